package reconcile

import (
	"fmt"

	lterrors "github.com/vango-dev/livetree/internal/errors"
	"github.com/vango-dev/livetree/pkg/vdom"
)

var (
	// ErrIncompatibleRoot matches every *IncompatibleRootError.
	ErrIncompatibleRoot = lterrors.New("LT101")

	// ErrUnresolved is returned when a deferred node has no component and
	// no Resolve hook is set.
	ErrUnresolved = lterrors.New("LT102")

	// ErrResolveDepth is returned when resolving keeps producing deferred
	// nodes.
	ErrResolveDepth = lterrors.New("LT103")
)

// IncompatibleRootError reports a live root and descriptor root of
// different kinds or tags. The caller must replace the subtree instead.
type IncompatibleRootError struct {
	LiveKind vdom.VKind
	LiveTag  string
	DescKind vdom.VKind
	DescTag  string
}

func describe(kind vdom.VKind, tag string) string {
	if kind == vdom.KindElement {
		return "<" + tag + ">"
	}
	return kind.String()
}

func (e *IncompatibleRootError) Error() string {
	return fmt.Sprintf("reconcile: cannot reconcile %s against %s",
		describe(e.LiveKind, e.LiveTag), describe(e.DescKind, e.DescTag))
}

// Is reports whether target is ErrIncompatibleRoot.
func (e *IncompatibleRootError) Is(target error) bool {
	return target == ErrIncompatibleRoot
}

// Unwrap returns the coded error.
func (e *IncompatibleRootError) Unwrap() error {
	return lterrors.New("LT101").
		WithDetail(e.Error()).
		WithSuggestion("Replace the live subtree when the root kind changes.")
}

func unresolvedError(desc *vdom.VNode) error {
	return lterrors.New("LT102").
		WithDetail(fmt.Sprintf("Deferred node with key %q has no component.", desc.Key))
}

func resolveDepthError(limit int) error {
	return lterrors.New("LT103").
		WithDetail(fmt.Sprintf("Still deferred after %d renders.", limit))
}
