package dom

import (
	"fmt"
	"html"
	"io"
	"maps"
	"slices"
	"strings"

	"github.com/vango-dev/livetree/pkg/vdom"
)

// Render returns n as HTML. Attributes are sorted by name. Live properties
// that differ from their zero value are printed after the attributes, so
// the output shows what a user would see in form controls.
func Render(n *Node) string {
	var sb strings.Builder
	_ = WriteHTML(&sb, n)
	return sb.String()
}

// WriteHTML writes n as HTML to w.
func WriteHTML(w io.Writer, n *Node) error {
	if n == nil {
		return nil
	}

	switch n.kind {
	case vdom.KindText:
		_, err := io.WriteString(w, html.EscapeString(n.text))
		return err
	case vdom.KindComment:
		_, err := fmt.Fprintf(w, "<!--%s-->", n.text)
		return err
	case vdom.KindElement:
	default:
		return fmt.Errorf("dom: unknown node kind %d", n.kind)
	}

	if _, err := fmt.Fprintf(w, "<%s", n.tag); err != nil {
		return err
	}
	for _, name := range slices.Sorted(maps.Keys(n.attrs)) {
		if err := writeAttr(w, name, n.attrs[name]); err != nil {
			return err
		}
	}
	for _, name := range slices.Sorted(maps.Keys(n.props)) {
		if _, dup := n.attrs[name]; dup {
			continue
		}
		switch v := n.props[name].(type) {
		case bool:
			if v {
				if err := writeAttr(w, name, ""); err != nil {
					return err
				}
			}
		case string:
			if v != "" {
				if err := writeAttr(w, name, v); err != nil {
					return err
				}
			}
		}
	}
	if _, err := io.WriteString(w, ">"); err != nil {
		return err
	}

	if vdom.IsVoidElement(n.tag) {
		return nil
	}
	for c := n.first; c != nil; c = c.next {
		if err := WriteHTML(w, c); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "</%s>", n.tag)
	return err
}

func writeAttr(w io.Writer, name, value string) error {
	if value == "" {
		_, err := fmt.Fprintf(w, " %s", name)
		return err
	}
	_, err := fmt.Fprintf(w, ` %s="%s"`, name, html.EscapeString(value))
	return err
}
