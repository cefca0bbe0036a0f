package reactive

import (
	"reflect"

	"github.com/quartzdag/quartz/internal"
)

// trackAllIndices implements the identity-sensitive search protocol's
// first step: track every integer index of the slice so a future
// mutation re-fires the effect.
func trackAllIndices(p *Proxy, id any, slice reflect.Value) {
	if p.kind.readonly() {
		return
	}
	for i := 0; i < slice.Len(); i++ {
		internal.Track(id, p.ptr, i)
	}
}

func elementEquals(a, b any) bool {
	if ar, ok := a.(refLike); ok {
		a = ar.derefAny()
	}
	if br, ok := b.(refLike); ok {
		b = br.derefAny()
	}
	return !hasChanged(a, b)
}

func sliceIndexOf(slice reflect.Value, value any, last bool) int {
	found := -1
	for i := 0; i < slice.Len(); i++ {
		if !slice.Index(i).CanInterface() {
			continue
		}
		if elementEquals(slice.Index(i).Interface(), value) {
			found = i
			if !last {
				return i
			}
		}
	}
	return found
}

// Includes, IndexOf, and LastIndexOf are the identity-sensitive search
// methods: track every index, search using the argument as given
// (which may itself be a reactive proxy), and retry
// with the raw form if the first search misses — so callers can search
// for either the reactive or the raw value.
func (p *Proxy) Includes(value any, path ...any) bool {
	slice, id, ok := p.walkTracked(path)
	if !ok || !isArrayKind(slice) {
		return false
	}
	trackAllIndices(p, id, slice)
	if sliceIndexOf(slice, value, false) != -1 {
		return true
	}
	return sliceIndexOf(slice, ToRaw(value), false) != -1
}

func (p *Proxy) IndexOf(value any, path ...any) int {
	slice, id, ok := p.walkTracked(path)
	if !ok || !isArrayKind(slice) {
		return -1
	}
	trackAllIndices(p, id, slice)
	if idx := sliceIndexOf(slice, value, false); idx != -1 {
		return idx
	}
	return sliceIndexOf(slice, ToRaw(value), false)
}

func (p *Proxy) LastIndexOf(value any, path ...any) int {
	slice, id, ok := p.walkTracked(path)
	if !ok || !isArrayKind(slice) {
		return -1
	}
	trackAllIndices(p, id, slice)
	if idx := sliceIndexOf(slice, value, true); idx != -1 {
		return idx
	}
	return sliceIndexOf(slice, ToRaw(value), true)
}

// resolveSlice descends path to a settable slice value, used by the
// length-mutating operations below. Fixed-size arrays can't grow or
// shrink and are rejected.
func (p *Proxy) resolveSlice(path []any) (reflect.Value, any, bool) {
	v, id, ok := p.walkTracked(path)
	if !ok || v.Kind() != reflect.Slice || !v.CanSet() {
		return reflect.Value{}, nil, false
	}
	return v, id, true
}

func (p *Proxy) unwrapItem(v any) any {
	if p.kind.shallow() {
		return v
	}
	return ToRaw(v)
}

// Push appends values, tracking suspended for the duration (this
// method internally reads length, which would otherwise create
// spurious self-dependencies), then triggers one ADD per appended
// index — which, per the dispatch table, resolves to firing only the
// "length" Dep.
func (p *Proxy) Push(path []any, values ...any) int {
	internal.PauseTracking()
	slice, id, ok := p.resolveSlice(path)
	if !ok {
		internal.ResetTracking()
		return 0
	}

	oldLen := slice.Len()
	newSlice := slice
	for _, v := range values {
		newSlice = reflect.Append(newSlice, reflect.ValueOf(p.unwrapItem(v)))
	}
	slice.Set(newSlice)
	internal.ResetTracking()

	newLen := newSlice.Len()
	for i, v := range values {
		internal.Trigger(id, p.ptr, internal.TriggerAdd, oldLen+i, v, nil, true, false, newLen)
	}
	return newLen
}

// Pop removes and returns the last element, triggering a length SET —
// which fires the length Dep plus the Dep for any index whose integer
// key is >= the new length.
func (p *Proxy) Pop(path ...any) any {
	internal.PauseTracking()
	slice, id, ok := p.resolveSlice(path)
	if !ok || slice.Len() == 0 {
		internal.ResetTracking()
		return nil
	}

	oldLen := slice.Len()
	last := slice.Index(oldLen - 1).Interface()
	slice.Set(slice.Slice(0, oldLen-1))
	internal.ResetTracking()

	newLen := oldLen - 1
	internal.Trigger(id, p.ptr, internal.TriggerSet, internal.LengthKey, newLen, oldLen, true, false, newLen)
	return last
}

// Shift removes and returns the first element. Only the length Dep and
// the Dep for the vacated tail index are invalidated — middle indices
// shifted down are not individually retriggered, matching the source
// library's documented array-mutation behavior.
func (p *Proxy) Shift(path ...any) any {
	internal.PauseTracking()
	slice, id, ok := p.resolveSlice(path)
	if !ok || slice.Len() == 0 {
		internal.ResetTracking()
		return nil
	}

	oldLen := slice.Len()
	first := slice.Index(0).Interface()
	reflect.Copy(slice.Slice(0, oldLen-1), slice.Slice(1, oldLen))
	slice.Set(slice.Slice(0, oldLen-1))
	internal.ResetTracking()

	newLen := oldLen - 1
	internal.Trigger(id, p.ptr, internal.TriggerSet, internal.LengthKey, newLen, oldLen, true, false, newLen)
	return first
}

// Unshift prepends values, triggering ADD at the new tail index, which
// resolves to firing the length Dep.
func (p *Proxy) Unshift(path []any, values ...any) int {
	internal.PauseTracking()
	slice, id, ok := p.resolveSlice(path)
	if !ok {
		internal.ResetTracking()
		return 0
	}

	oldLen := slice.Len()
	n := len(values)
	newSlice := reflect.MakeSlice(slice.Type(), oldLen+n, oldLen+n)
	for i, v := range values {
		newSlice.Index(i).Set(reflect.ValueOf(p.unwrapItem(v)))
	}
	reflect.Copy(newSlice.Slice(n, oldLen+n), slice)
	slice.Set(newSlice)
	internal.ResetTracking()

	newLen := oldLen + n
	if n > 0 {
		internal.Trigger(id, p.ptr, internal.TriggerAdd, newLen-1, values[n-1], nil, true, false, newLen)
	}
	return newLen
}

// Splice removes deleteCount elements starting at start and inserts
// items in their place, returning the removed elements.
func (p *Proxy) Splice(path []any, start, deleteCount int, items ...any) []any {
	internal.PauseTracking()
	slice, id, ok := p.resolveSlice(path)
	if !ok {
		internal.ResetTracking()
		return nil
	}

	oldLen := slice.Len()
	if start < 0 {
		start = 0
	}
	if start > oldLen {
		start = oldLen
	}
	if deleteCount < 0 {
		deleteCount = 0
	}
	if start+deleteCount > oldLen {
		deleteCount = oldLen - start
	}

	removed := make([]any, deleteCount)
	for i := 0; i < deleteCount; i++ {
		removed[i] = slice.Index(start + i).Interface()
	}

	newSlice := reflect.MakeSlice(slice.Type(), 0, oldLen-deleteCount+len(items))
	newSlice = reflect.AppendSlice(newSlice, slice.Slice(0, start))
	for _, v := range items {
		newSlice = reflect.Append(newSlice, reflect.ValueOf(p.unwrapItem(v)))
	}
	newSlice = reflect.AppendSlice(newSlice, slice.Slice(start+deleteCount, oldLen))
	slice.Set(newSlice)
	internal.ResetTracking()

	newLen := newSlice.Len()
	if deleteCount > 0 {
		internal.Trigger(id, p.ptr, internal.TriggerSet, internal.LengthKey, newLen, oldLen, true, false, newLen)
	}
	for i, v := range items {
		internal.Trigger(id, p.ptr, internal.TriggerAdd, start+i, v, nil, true, false, newLen)
	}
	return removed
}
