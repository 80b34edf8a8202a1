package reactive

// Scope owns observers, child scopes and cleanup functions. Disposing a
// scope disposes everything it owns.
//
// Scopes form a hierarchy mirroring the component tree: each component
// render gets a child scope of its parent's.
type Scope struct {
	parent    *Scope
	children  []*Scope
	observers []*Observer
	cleanups  []func()
	disposed  bool
}

// NewScope creates a scope. A non-nil parent owns the new scope.
func NewScope(parent *Scope) *Scope {
	sc := &Scope{parent: parent}
	if parent != nil {
		if parent.disposed {
			sc.disposed = true
		} else {
			parent.children = append(parent.children, sc)
		}
	}
	return sc
}

// Parent returns the parent scope, or nil for a root scope.
func (sc *Scope) Parent() *Scope {
	return sc.parent
}

// IsDisposed reports whether Dispose was called.
func (sc *Scope) IsDisposed() bool {
	return sc.disposed
}

// Own registers o with the scope. Owning an observer in a disposed scope
// disposes it immediately.
func (sc *Scope) Own(o *Observer) {
	if sc.disposed {
		o.Dispose()
		return
	}
	sc.observers = append(sc.observers, o)
}

// OnCleanup registers fn to run on Dispose. On a disposed scope fn runs
// immediately.
func (sc *Scope) OnCleanup(fn func()) {
	if sc.disposed {
		fn()
		return
	}
	sc.cleanups = append(sc.cleanups, fn)
}

// Dispose disposes child scopes in reverse order, then owned observers,
// then runs cleanups in reverse registration order. It is idempotent.
func (sc *Scope) Dispose() {
	if sc.disposed {
		return
	}
	sc.disposed = true

	if sc.parent != nil {
		sc.parent.removeChild(sc)
	}

	children := sc.children
	sc.children = nil
	for i := len(children) - 1; i >= 0; i-- {
		children[i].Dispose()
	}

	observers := sc.observers
	sc.observers = nil
	for _, o := range observers {
		o.Dispose()
	}

	cleanups := sc.cleanups
	sc.cleanups = nil
	for i := len(cleanups) - 1; i >= 0; i-- {
		cleanups[i]()
	}
}

func (sc *Scope) removeChild(child *Scope) {
	for i, c := range sc.children {
		if c == child {
			sc.children = append(sc.children[:i], sc.children[i+1:]...)
			return
		}
	}
}
