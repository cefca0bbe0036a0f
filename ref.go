package reactive

import (
	"reflect"

	"github.com/quartzdag/quartz/internal"
)

// refLike lets Proxy.Get/Set recognize a ref stored as a struct field
// or slice/map element without needing to know its element type T —
// every instantiation of Ref[T] satisfies this identically, so a
// field holding any ref auto-unwraps to its value on read.
type refLike interface {
	derefAny() any
	setAny(v any)
	isReadonlyRef() bool
}

// Ref is a single-cell observable. Its Dep lives inline rather than in
// the target/key registry Proxy uses.
type Ref[T any] struct {
	dep      *internal.Dep
	raw      T
	readonly bool
	shallow  bool

	// getOverride/setOverride are set only for refs built by CustomRef,
	// which delegates storage and change detection to the factory
	// instead of using raw/hasChanged.
	getOverride func() T
	setOverride func(T)
}

// NewRef constructs a deeply-reactive ref: if v is a pointer to a
// struct/slice/array/map, writes to it route through Reactive so
// nested objects become reactive too.
//
// spec.md §4.4 ("if input is already a ref, return it") asks for
// ref(ref(x)) === ref(x); Go's generics can't express that here, since
// NewRef[T] is instantiated with T already fixed to *Ref[U] by the
// caller and must return a *Ref[T], not the differently-typed *Ref[U]
// underneath. Rather than silently double-wrap, warn so the mistake is
// visible in development — see DESIGN.md.
func NewRef[T any](v T) *Ref[T] {
	warnIfAlreadyRef(v)
	r := &Ref[T]{dep: internal.NewDep()}
	r.raw = v
	maybeReactiveWrap(v)
	return r
}

// ShallowRef constructs a ref that never recursively wraps its value.
// See NewRef's doc comment for the same already-a-ref caveat.
func ShallowRef[T any](v T) *Ref[T] {
	warnIfAlreadyRef(v)
	return &Ref[T]{dep: internal.NewDep(), raw: v, shallow: true}
}

func warnIfAlreadyRef(v any) {
	if _, ok := v.(refLike); ok {
		internal.Warn("ref() called with an existing ref: Go's type system cannot return it unchanged here, so it will be double-wrapped. Unwrap with .Value() first.")
	}
}

// maybeReactiveWrap registers v for reactive tracking as a side effect
// when it is an observable-container pointer, so subsequent
// Reactive(v) calls on the same pointer hit the proxy cache. Go has no
// way to make r.Value() return an already-wrapped T (the return type
// is fixed to T, not *Proxy), so this is the documented compromise:
// the raw value round-trips unwrapped, but the underlying container is
// independently reactive if accessed via Reactive(v) directly.
func maybeReactiveWrap(v any) {
	if _, ok := v.(refLike); ok {
		return // a ref is not itself an observable container
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Ptr || rv.IsNil() {
		return
	}
	switch rv.Elem().Kind() {
	case reflect.Struct, reflect.Slice, reflect.Array, reflect.Map:
		wrap(v, KindReactive)
	}
}

// Value reads the ref, tracking the active effect against its Dep.
func (r *Ref[T]) Value() T {
	if r.getOverride != nil {
		return r.getOverride()
	}
	internal.TrackDep(r.dep)
	return r.raw
}

// RawValue returns the stored value without tracking, exposed for
// ToRefs/CustomRef plumbing.
func (r *Ref[T]) RawValue() T { return r.raw }

// SetValue writes the ref. A no-op with a dev warning if the ref is
// readonly. (ToRef of a readonly proxy returns a *FieldRef, whose
// writes are rejected by the proxy's own Set instead.)
func (r *Ref[T]) SetValue(v T) {
	if r.readonly {
		internal.Warn("Set operation on key \"value\" failed: target is readonly.")
		return
	}
	r.set(v)
}

func (r *Ref[T]) set(v T) {
	if r.setOverride != nil {
		r.setOverride(v)
		return
	}
	if !r.shallow {
		if p, ok := any(v).(*Proxy); ok {
			v = any(ToRaw(p)).(T)
		}
	}
	if !hasChanged(any(v), any(r.raw)) {
		return
	}
	r.raw = v
	if !r.shallow {
		maybeReactiveWrap(v)
	}
	internal.TriggerDep(r.dep)
}

// Dep exposes the inline Dep backing this ref (e.g. for CustomRef).
func (r *Ref[T]) Dep() *internal.Dep { return r.dep }

func (r *Ref[T]) derefAny() any       { return r.Value() }
func (r *Ref[T]) setAny(v any)        { r.SetValue(v.(T)) }
func (r *Ref[T]) isReadonlyRef() bool { return r.readonly }

// IsRef reports whether x is any Ref[T].
func IsRef(x any) bool {
	_, ok := x.(refLike)
	return ok
}

// Unref returns x.Value() if x is a ref, else x itself.
func Unref(x any) any {
	if rl, ok := x.(refLike); ok {
		return rl.derefAny()
	}
	return x
}

// TriggerRef manually fires a ref's Dep without requiring a write.
func TriggerRef[T any](r *Ref[T]) {
	internal.TriggerDep(r.dep)
}

// CustomRef lets callers supply their own get/set, while the Dep
// itself is still managed by this package. track/trigger are passed
// to factory so the custom implementation can call them at whatever
// point it decides a
// read or write "happened" (e.g. a debounced ref tracks immediately
// but triggers only after the debounce fires).
type CustomRefHandle struct {
	dep *internal.Dep
}

func (h *CustomRefHandle) Track()   { internal.TrackDep(h.dep) }
func (h *CustomRefHandle) Trigger() { internal.TriggerDep(h.dep) }

func CustomRef[T any](factory func(track func(), trigger func()) (get func() T, set func(T))) *Ref[T] {
	h := &CustomRefHandle{dep: internal.NewDep()}
	get, set := factory(h.Track, h.Trigger)

	r := &Ref[T]{dep: h.dep}
	r.getOverride = get
	r.setOverride = set
	return r
}

// FieldRef is the ref returned by ToRef: it has no Dep of its own —
// tracking happens via the backing Proxy's own (target, key) Dep.
type FieldRef struct {
	proxy        *Proxy
	path         []any
	hasDefault   bool
	defaultValue any
}

// ToRef creates a ref-shaped view over one key of a reactive object.
// Reads/writes pass straight through to the Proxy; a read of an
// absent key returns nil (see ToRefWithDefault for a fallback value).
func ToRef(p *Proxy, path ...any) *FieldRef {
	return &FieldRef{proxy: p, path: path}
}

// ToRefWithDefault is ToRef plus a fallback value returned by Value
// while the addressed key is absent from the underlying object.
func ToRefWithDefault(p *Proxy, defaultValue any, path ...any) *FieldRef {
	return &FieldRef{proxy: p, path: path, hasDefault: true, defaultValue: defaultValue}
}

func (f *FieldRef) Value() any {
	if f.hasDefault && !f.proxy.Has(f.path...) {
		return f.defaultValue
	}
	return f.proxy.Get(f.path...)
}
func (f *FieldRef) SetValue(v any)  { f.proxy.Set(v, f.path...) }
func (f *FieldRef) derefAny() any   { return f.Value() }
func (f *FieldRef) setAny(v any)    { f.SetValue(v) }
func (f *FieldRef) isReadonlyRef() bool {
	return f.proxy.kind.readonly()
}

// ToRefs builds a FieldRef for every own key of the proxy's target.
func ToRefs(p *Proxy) map[string]*FieldRef {
	out := make(map[string]*FieldRef)
	for _, k := range p.Keys() {
		key, ok := k.(string)
		if !ok {
			continue
		}
		out[key] = ToRef(p, key)
	}
	return out
}

// RefsProxy is the handle returned by ProxyRefs: a shallow view over a
// plain (non-reactive) map of refs that auto-unwraps on Get and
// delegates to the ref's own SetValue on Set, so assigning a plain
// value to a ref-valued key updates the ref in place instead of
// replacing it.
type RefsProxy struct {
	refs map[string]refLike
}

// ProxyRefs wraps a map of refs (as produced by ToRefs, or hand-built)
// in a view that unwraps refs on Get and re-delegates writes to the
// underlying ref's SetValue. Use this for "object of refs" values that
// are not themselves reactive proxies.
func ProxyRefs[R refLike](refs map[string]R) *RefsProxy {
	out := make(map[string]refLike, len(refs))
	for k, v := range refs {
		out[k] = v
	}
	return &RefsProxy{refs: out}
}

// Get unwraps the ref stored at key, or returns nil if key is absent.
func (p *RefsProxy) Get(key string) any {
	r, ok := p.refs[key]
	if !ok {
		return nil
	}
	return r.derefAny()
}

// Set writes through to the ref stored at key, leaving the ref itself
// in place. A no-op if key does not name an existing ref.
func (p *RefsProxy) Set(key string, v any) {
	if r, ok := p.refs[key]; ok {
		r.setAny(v)
	}
}
