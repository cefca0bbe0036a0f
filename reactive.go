// Package reactive is a fine-grained dependency-tracking engine: it
// intercepts reads and writes on observed values, records which
// effects depended on which values during their last run, and re-runs
// those effects when their dependencies change.
//
// Go has no native proxy/trap facility, so the "transparent wrapper"
// described by the originating design is rendered as explicit
// accessor functions on Proxy (Get/Set/Has/Delete/Keys), following
// the pattern in ozanturksever/uiwgo's reactivity.Store: callers
// address nested state by path instead of by field syntax.
package reactive

import (
	"reflect"
	"runtime"

	"github.com/quartzdag/quartz/internal"
)

// WrapKind identifies which of the four proxy caches a Proxy belongs
// to: mutable-reactive, readonly, shallow-reactive, shallow-readonly.
type WrapKind int

const (
	KindReactive WrapKind = iota
	KindReadonly
	KindShallowReactive
	KindShallowReadonly
)

func (k WrapKind) readonly() bool { return k == KindReadonly || k == KindShallowReadonly }
func (k WrapKind) shallow() bool  { return k == KindShallowReactive || k == KindShallowReadonly }

// Proxy is a reactive container over a struct, slice/array, or map,
// reached through a pointer so mutations are visible to the caller's
// own copy of the target.
type Proxy struct {
	kind WrapKind
	id   uintptr
	ptr  any           // the original pointer passed to Reactive/Readonly/...
	rv   reflect.Value // addressable Elem() of ptr
}

type cacheKey struct {
	id   uintptr
	kind WrapKind
}

var (
	proxyCache = make(map[cacheKey]*Proxy)
	rawTargets = make(map[uintptr]bool) // marked via MarkRaw: never wrapped
)

// MarkRaw annotates an object so it is never made reactive, even when
// it shows up as a field of an otherwise-reactive container. Tracked
// via a marker kept out-of-band, since Go values carry no hidden
// symbol slot the way JS objects do.
func MarkRaw(target any) {
	if id, ok := pointerID(target); ok {
		rawTargets[id] = true
	}
}

func isMarkedRaw(target any) bool {
	id, ok := pointerID(target)
	return ok && rawTargets[id]
}

// pointerID returns the stable identity of a pointer-typed target, the
// key the tracking registry and proxy caches use throughout this
// package.
func pointerID(target any) (uintptr, bool) {
	rv := reflect.ValueOf(target)
	if rv.Kind() != reflect.Ptr || rv.IsNil() {
		return 0, false
	}
	return rv.Pointer(), true
}

// wrap builds or returns the cached Proxy for target under kind.
// Registers a runtime.AddCleanup callback that evicts the registry's
// Dep map and the proxy-cache entries for this target once target is
// unreachable. proxyCache holds each Proxy, and through p.ptr its
// target, strongly, so a cached target never becomes unreachable and
// the cleanup does not run while its cache entry exists.
func wrap(target any, kind WrapKind) *Proxy {
	if target == nil || isMarkedRaw(target) {
		return nil
	}

	// target["__v_raw"]-equivalent: re-wrapping an existing Proxy under
	// its own kind returns it unchanged (reactive(reactive(x)) ===
	// reactive(x)); under a different kind, re-resolve the underlying
	// raw pointer instead of wrapping the Proxy struct itself.
	if p, ok := target.(*Proxy); ok {
		if p == nil {
			return nil
		}
		if p.kind == kind {
			return p
		}
		return wrap(p.ptr, kind)
	}

	rv := reflect.ValueOf(target)
	if rv.Kind() != reflect.Ptr || rv.IsNil() {
		return nil
	}
	elem := rv.Elem()
	switch elem.Kind() {
	case reflect.Struct, reflect.Slice, reflect.Array, reflect.Map:
	default:
		return nil // not an observable container; return target's raw form
	}

	id := rv.Pointer()
	key := cacheKey{id: id, kind: kind}
	if p, ok := proxyCache[key]; ok {
		return p
	}

	p := &Proxy{kind: kind, id: id, ptr: target, rv: elem}
	proxyCache[key] = p

	registerWeakTarget(target, id)

	return p
}

func registerWeakTarget(target any, id uintptr) {
	rv := reflect.ValueOf(target)
	runtime.AddCleanup(rv.Interface(), func(evictID uintptr) {
		evictTarget(evictID)
	}, id)
}

func evictTarget(id uintptr) {
	for _, kind := range []WrapKind{KindReactive, KindReadonly, KindShallowReactive, KindShallowReadonly} {
		delete(proxyCache, cacheKey{id: id, kind: kind})
	}
	internal.Evict(id)
}

// Reactive wraps target (a pointer to a struct, slice, array, or map)
// in a deeply-tracked, mutable Proxy.
func Reactive(target any) *Proxy { return wrap(target, KindReactive) }

// Readonly wraps target in a Proxy whose Set/Delete are no-ops (with a
// dev warning).
func Readonly(target any) *Proxy { return wrap(target, KindReadonly) }

// ShallowReactive wraps target without recursively wrapping nested
// containers or unwrapping nested refs.
func ShallowReactive(target any) *Proxy { return wrap(target, KindShallowReactive) }

// ShallowReadonly combines the shallow and readonly behaviors.
func ShallowReadonly(target any) *Proxy { return wrap(target, KindShallowReadonly) }

// IsReactive reports whether x is a Proxy whose writes are tracked
// (true for KindReactive and KindShallowReactive; false for readonly
// variants — a readonly proxy is not itself considered reactive).
func IsReactive(x any) bool {
	p, ok := x.(*Proxy)
	return ok && p != nil && !p.kind.readonly()
}

// IsReadonly reports whether x is a readonly or shallow-readonly Proxy.
func IsReadonly(x any) bool {
	p, ok := x.(*Proxy)
	return ok && p != nil && p.kind.readonly()
}

// IsShallow reports whether x is a shallow-reactive or
// shallow-readonly Proxy.
func IsShallow(x any) bool {
	p, ok := x.(*Proxy)
	return ok && p != nil && p.kind.shallow()
}

// IsProxy reports whether x is any kind of Proxy.
func IsProxy(x any) bool {
	_, ok := x.(*Proxy)
	return ok
}

// ToRaw returns the underlying pointer behind a Proxy, or x itself if
// x is not a Proxy.
func ToRaw(x any) any {
	if p, ok := x.(*Proxy); ok && p != nil {
		return p.ptr
	}
	return x
}

// Raw returns the underlying pointer of this Proxy.
func (p *Proxy) Raw() any { return p.ptr }

// Kind reports which of the four wrap kinds this Proxy uses.
func (p *Proxy) Kind() WrapKind { return p.kind }
