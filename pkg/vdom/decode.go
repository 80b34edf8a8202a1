package vdom

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	lterrors "github.com/vango-dev/livetree/internal/errors"
)

// document is the JSON shape of one descriptor node. Exactly one of Tag,
// Text, Comment and Fragment is set. Children that are JSON strings are
// text nodes.
type document struct {
	Tag      string            `json:"tag,omitempty"`
	Key      string            `json:"key,omitempty"`
	Attrs    map[string]any    `json:"attrs,omitempty"`
	Children []json.RawMessage `json:"children,omitempty"`
	Text     *string           `json:"text,omitempty"`
	Comment  *string           `json:"comment,omitempty"`
	Fragment []json.RawMessage `json:"fragment,omitempty"`
}

// Decode reads one JSON descriptor document from r.
func Decode(r io.Reader) (*VNode, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, lterrors.New("LT140").Wrap(err)
	}
	return DecodeBytes(data)
}

// DecodeFile reads a JSON descriptor document from path.
func DecodeFile(path string) (*VNode, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, lterrors.New("LT140").
			WithDetail(fmt.Sprintf("Could not read %s.", path)).
			Wrap(err)
	}
	return DecodeBytes(data)
}

// DecodeBytes decodes a JSON descriptor document.
func DecodeBytes(data []byte) (*VNode, error) {
	return decodeNode(json.RawMessage(bytes.TrimSpace(data)), "$")
}

func decodeNode(raw json.RawMessage, path string) (*VNode, error) {
	if len(raw) > 0 && raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, decodeError(path, err)
		}
		return Text(s), nil
	}

	var doc document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, decodeError(path, err)
	}

	switch {
	case doc.Text != nil:
		return Text(*doc.Text), nil

	case doc.Comment != nil:
		return Comment(*doc.Comment), nil

	case doc.Fragment != nil:
		children, err := decodeChildren(doc.Fragment, path+".fragment")
		if err != nil {
			return nil, err
		}
		return &VNode{Kind: KindFragment, Children: children}, nil

	case doc.Tag != "":
		children, err := decodeChildren(doc.Children, path+".children")
		if err != nil {
			return nil, err
		}
		node := &VNode{
			Kind:     KindElement,
			Tag:      doc.Tag,
			Key:      doc.Key,
			Props:    make(Props, len(doc.Attrs)),
			Children: children,
		}
		for k, v := range doc.Attrs {
			node.Props[k] = v
		}
		return node, nil
	}

	return nil, lterrors.New("LT140").
		WithDetail(fmt.Sprintf("Node at %s has none of tag, text, comment or fragment.", path))
}

func decodeChildren(raws []json.RawMessage, path string) ([]*VNode, error) {
	children := make([]*VNode, 0, len(raws))
	for i, raw := range raws {
		child, err := decodeNode(raw, fmt.Sprintf("%s[%d]", path, i))
		if err != nil {
			return nil, err
		}
		children = append(children, child)
	}
	return children, nil
}

func decodeError(path string, err error) error {
	return lterrors.New("LT140").
		WithDetail(fmt.Sprintf("Invalid node at %s.", path)).
		Wrap(err)
}
