package reconcile

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/vango-dev/livetree/pkg/telemetry"
	"github.com/vango-dev/livetree/pkg/vdom"
)

// DefaultPropertyMirrors are the attributes patched as live properties.
var DefaultPropertyMirrors = vdom.DefaultPropertyMirrors

// DefaultMaxResolveDepth bounds how many times a deferred node may render
// to another deferred node.
const DefaultMaxResolveDepth = 32

type options struct {
	mirrors         []string
	logger          *slog.Logger
	metrics         *telemetry.Metrics
	tracer          *telemetry.Tracer
	maxResolveDepth int
}

// Option configures a Reconciler.
type Option func(*options)

// WithPropertyMirrors replaces the set of attributes patched as live
// properties.
func WithPropertyMirrors(names ...string) Option {
	return func(o *options) {
		o.mirrors = names
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithMetrics sets the Prometheus collectors.
func WithMetrics(m *telemetry.Metrics) Option {
	return func(o *options) {
		o.metrics = m
	}
}

// WithTracer sets the span tracer.
func WithTracer(t *telemetry.Tracer) Option {
	return func(o *options) {
		o.tracer = t
	}
}

// WithMaxResolveDepth bounds nested deferred renders. Values below 1 are
// ignored.
func WithMaxResolveDepth(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.maxResolveDepth = n
		}
	}
}

// Reconciler patches live trees of node type N. It remembers the
// attributes it applied to each node, so one Reconciler should be used for
// all passes over the same tree. It is not safe for concurrent use.
type Reconciler[N comparable] struct {
	tree            Tree[N]
	hooks           Hooks[N]
	mirrors         map[string]bool
	mirrorNames     []string
	logger          *slog.Logger
	metrics         *telemetry.Metrics
	tracer          *telemetry.Tracer
	maxResolveDepth int

	// applied holds the last attributes written to each node.
	applied map[N]map[string]string

	stats Stats
	last  Stats
	depth int
}

// New creates a Reconciler for tree.
func New[N comparable](tree Tree[N], hooks Hooks[N], opts ...Option) *Reconciler[N] {
	o := options{
		mirrors:         DefaultPropertyMirrors,
		logger:          slog.Default(),
		maxResolveDepth: DefaultMaxResolveDepth,
	}
	for _, opt := range opts {
		opt(&o)
	}

	r := &Reconciler[N]{
		tree:            tree,
		hooks:           hooks,
		mirrors:         make(map[string]bool, len(o.mirrors)),
		logger:          o.logger,
		metrics:         o.metrics,
		tracer:          o.tracer,
		maxResolveDepth: o.maxResolveDepth,
		applied:         make(map[N]map[string]string),
	}
	for _, name := range o.mirrors {
		name = strings.ToLower(name)
		if !r.mirrors[name] {
			r.mirrors[name] = true
			r.mirrorNames = append(r.mirrorNames, name)
		}
	}
	return r
}

// LastStats returns the statistics of the last completed call.
func (r *Reconciler[N]) LastStats() Stats {
	return r.last
}

// Forget drops what the reconciler remembers about n's subtree, for nodes
// the caller removed or replaced itself.
func (r *Reconciler[N]) Forget(n N) {
	Walk[N](r.tree, n, func(c N, _ vdom.VKind) bool {
		delete(r.applied, c)
		return true
	})
}

// Reconcile makes live match desc. live and desc must be compatible: same
// kind, and for elements the same tag.
func (r *Reconciler[N]) Reconcile(live N, desc *vdom.VNode) error {
	return r.ReconcileContext(context.Background(), live, desc)
}

// ReconcileContext is Reconcile with a context for tracing. The context is
// checked once before any mutation.
func (r *Reconciler[N]) ReconcileContext(ctx context.Context, live N, desc *vdom.VNode) (err error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	done := r.begin(ctx, "reconcile")
	defer func() { done(err) }()

	desc, err = r.resolve(desc)
	if err != nil {
		return err
	}
	if desc == nil || !r.compatible(live, desc) {
		return r.incompatible(live, desc)
	}
	return r.morph(live, desc)
}

// PatchAttributes patches live's attributes, or its text for text and
// comment nodes, without touching children.
func (r *Reconciler[N]) PatchAttributes(live N, desc *vdom.VNode) {
	done := r.begin(context.Background(), "reconcile.attributes")
	r.patchAttributes(live, desc)
	done(nil)
}

// DiffChildren makes live's children match desc's children without
// patching live itself.
func (r *Reconciler[N]) DiffChildren(live N, desc *vdom.VNode) (err error) {
	done := r.begin(context.Background(), "reconcile.children")
	defer func() { done(err) }()
	if desc == nil {
		return r.diffChildren(live, nil)
	}
	return r.diffChildren(live, desc.Children)
}

// begin starts a public call. Nested calls from hooks share the outer
// call's statistics.
func (r *Reconciler[N]) begin(ctx context.Context, name string) func(error) {
	if r.depth > 0 {
		r.depth++
		return func(error) { r.depth-- }
	}
	r.depth = 1
	r.stats = Stats{}
	start := time.Now()
	_, span := r.tracer.Start(ctx, name)

	return func(err error) {
		r.depth = 0
		r.last = r.stats
		r.metrics.RecordReconcile(time.Since(start), err)
		r.stats.record(r.metrics)
		telemetry.End(span, err,
			attribute.Int("nodes.added", r.stats.Added),
			attribute.Int("nodes.moved", r.stats.Moved),
			attribute.Int("nodes.discarded", r.stats.Discarded),
			attribute.Int("attributes.written", r.stats.AttributeWrites),
		)
		if err != nil {
			r.logger.Debug("reconcile failed", "op", name, "error", err)
			return
		}
		r.logger.Debug("reconciled",
			"op", name,
			"added", r.stats.Added,
			"preserved", r.stats.Preserved,
			"moved", r.stats.Moved,
			"discarded", r.stats.Discarded,
			"vetoed", r.stats.Vetoed,
			"attributes", r.stats.AttributeWrites,
		)
	}
}

func (r *Reconciler[N]) incompatible(live N, desc *vdom.VNode) error {
	err := &IncompatibleRootError{
		LiveKind: r.tree.Kind(live),
		DescKind: vdom.KindFragment,
	}
	if err.LiveKind == vdom.KindElement {
		err.LiveTag = r.tree.Tag(live)
	}
	if desc != nil {
		err.DescKind = desc.Kind
		err.DescTag = desc.Tag
	}
	return err
}

// compatible reports whether live can be patched into desc.
func (r *Reconciler[N]) compatible(live N, desc *vdom.VNode) bool {
	kind := r.tree.Kind(live)
	if kind != desc.Kind {
		return false
	}
	if kind == vdom.KindElement {
		return strings.EqualFold(r.tree.Tag(live), desc.Tag)
	}
	return true
}

func (r *Reconciler[N]) isPlaceholder(n N) bool {
	return r.hooks.IsPlaceholder != nil && r.hooks.IsPlaceholder(n)
}

func (r *Reconciler[N]) keyOf(n N) string {
	if r.hooks.KeyOf != nil {
		return r.hooks.KeyOf(n)
	}
	return r.tree.Key(n)
}

// morph patches a matched live node and, for elements, its children.
func (r *Reconciler[N]) morph(live N, desc *vdom.VNode) error {
	if desc.Kind != vdom.KindElement {
		r.patchAttributes(live, desc)
		return nil
	}
	if r.hooks.OnBeforeElUpdated != nil && !r.hooks.OnBeforeElUpdated(live, desc) {
		return nil
	}
	r.patchAttributes(live, desc)
	if r.isPlaceholder(live) {
		return nil
	}
	if r.hooks.OnBeforeChildrenUpdate != nil && !r.hooks.OnBeforeChildrenUpdate(live, desc) {
		return nil
	}
	return r.diffChildren(live, desc.Children)
}

// resolve renders deferred nodes until a concrete node (or nil) remains.
func (r *Reconciler[N]) resolve(desc *vdom.VNode) (*vdom.VNode, error) {
	for depth := 0; desc.IsDeferred(); depth++ {
		if depth >= r.maxResolveDepth {
			return nil, resolveDepthError(r.maxResolveDepth)
		}

		var next *vdom.VNode
		switch {
		case r.hooks.Resolve != nil:
			var err error
			if next, err = r.hooks.Resolve(desc); err != nil {
				return nil, err
			}
		case desc.Comp != nil:
			next = desc.Comp.Render()
		default:
			return nil, unresolvedError(desc)
		}

		if next != nil && next.Key == "" && desc.Key != "" {
			keyed := *next
			keyed.Key = desc.Key
			next = &keyed
		}
		desc = next
	}
	return desc, nil
}
