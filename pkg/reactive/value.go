package reactive

// Kind discriminates the variants of Value.
type Kind uint8

const (
	KindPlain Kind = iota
	KindCell
	KindDerived
)

// String returns a human-readable name for the kind.
func (k Kind) String() string {
	switch k {
	case KindPlain:
		return "plain"
	case KindCell:
		return "cell"
	case KindDerived:
		return "derived"
	default:
		return "unknown"
	}
}

// Value is either a plain value, a Cell or a Derived. Consumers that accept
// "a value or something reactive" take a Value and switch on Kind.
type Value[T any] struct {
	kind    Kind
	plain   T
	cell    *Cell[T]
	derived *Derived[T]
}

// Plain wraps a constant.
func Plain[T any](v T) Value[T] {
	return Value[T]{kind: KindPlain, plain: v}
}

// FromCell wraps a cell. A nil cell yields the zero plain value.
func FromCell[T any](c *Cell[T]) Value[T] {
	if c == nil {
		return Value[T]{}
	}
	return Value[T]{kind: KindCell, cell: c}
}

// FromDerived wraps a derived cell. A nil cell yields the zero plain value.
func FromDerived[T any](d *Derived[T]) Value[T] {
	if d == nil {
		return Value[T]{}
	}
	return Value[T]{kind: KindDerived, derived: d}
}

// Kind returns the variant.
func (v Value[T]) Kind() Kind {
	return v.kind
}

// IsReactive reports whether reading the value can record a dependency.
func (v Value[T]) IsReactive() bool {
	return v.kind != KindPlain
}

// Get reads the value, tracking it when it is reactive.
func (v Value[T]) Get() T {
	switch v.kind {
	case KindCell:
		return v.cell.Get()
	case KindDerived:
		return v.derived.Get()
	default:
		return v.plain
	}
}

// Peek reads the value without tracking.
func (v Value[T]) Peek() T {
	switch v.kind {
	case KindCell:
		return v.cell.Peek()
	case KindDerived:
		return v.derived.Peek()
	default:
		return v.plain
	}
}

// Source returns the underlying cell or derived cell, or nil for a plain
// value.
func (v Value[T]) Source() Source {
	switch v.kind {
	case KindCell:
		return v.cell
	case KindDerived:
		return v.derived
	default:
		return nil
	}
}
