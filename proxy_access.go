package reactive

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/quartzdag/quartz/internal"
)

// joinPath renders a path prefix into the comparable string used to
// derive nested-container identities (internal.TargetID). Segments are
// separated by a control character unlikely to appear in field names
// or collide with formatted values.
func joinPath(path []any) string {
	parts := make([]string, len(path))
	for i, seg := range path {
		parts[i] = fmt.Sprint(seg)
	}
	return strings.Join(parts, "\x1f")
}

func isArrayKind(v reflect.Value) bool {
	return v.Kind() == reflect.Slice || v.Kind() == reflect.Array
}

// stepInto descends one path segment from cur, dereferencing pointers
// transparently along the way.
func stepInto(cur reflect.Value, seg any) (reflect.Value, bool) {
	for cur.Kind() == reflect.Ptr {
		if cur.IsNil() {
			return reflect.Value{}, false
		}
		cur = cur.Elem()
	}

	switch cur.Kind() {
	case reflect.Struct:
		name, ok := seg.(string)
		if !ok {
			return reflect.Value{}, false
		}
		f := cur.FieldByName(name)
		if !f.IsValid() {
			return reflect.Value{}, false
		}
		return f, true

	case reflect.Slice, reflect.Array:
		idx, ok := seg.(int)
		if !ok || idx < 0 || idx >= cur.Len() {
			return reflect.Value{}, false
		}
		return cur.Index(idx), true

	case reflect.Map:
		mv := cur.MapIndex(reflect.ValueOf(seg))
		if !mv.IsValid() {
			return reflect.Value{}, false
		}
		// MapIndex results aren't addressable; wrap a settable copy so
		// further (read-only) descent doesn't panic. Writes at this
		// level go through writeKey's SetMapIndex path instead.
		tmp := reflect.New(mv.Type()).Elem()
		tmp.Set(mv)
		return tmp, true

	default:
		return reflect.Value{}, false
	}
}

func readKey(container reflect.Value, key any) (reflect.Value, bool) {
	for container.Kind() == reflect.Ptr {
		if container.IsNil() {
			return reflect.Value{}, false
		}
		container = container.Elem()
	}

	switch container.Kind() {
	case reflect.Struct:
		name, ok := key.(string)
		if !ok {
			return reflect.Value{}, false
		}
		f := container.FieldByName(name)
		return f, f.IsValid()

	case reflect.Slice, reflect.Array:
		idx, ok := key.(int)
		if !ok || idx < 0 || idx >= container.Len() {
			return reflect.Value{}, false
		}
		return container.Index(idx), true

	case reflect.Map:
		mv := container.MapIndex(reflect.ValueOf(key))
		return mv, mv.IsValid()
	}

	return reflect.Value{}, false
}

func writeKey(container reflect.Value, key any, value any) {
	for container.Kind() == reflect.Ptr {
		container = container.Elem()
	}

	switch container.Kind() {
	case reflect.Struct:
		name := key.(string)
		f := container.FieldByName(name)
		if f.IsValid() && f.CanSet() {
			setReflect(f, value)
		}
	case reflect.Slice, reflect.Array:
		idx := key.(int)
		if idx >= 0 && idx < container.Len() {
			setReflect(container.Index(idx), value)
		}
	case reflect.Map:
		container.SetMapIndex(reflect.ValueOf(key), reflect.ValueOf(value))
	}
}

func setReflect(dst reflect.Value, value any) {
	if value == nil {
		dst.Set(reflect.Zero(dst.Type()))
		return
	}
	rv := reflect.ValueOf(value)
	if rv.Type().AssignableTo(dst.Type()) {
		dst.Set(rv)
		return
	}
	if rv.Type().ConvertibleTo(dst.Type()) {
		dst.Set(rv.Convert(dst.Type()))
	}
}

// walkParent descends path[:len-1], tracking each hop as a GET on its
// immediate parent, and returns the container that directly holds the
// final segment plus that container's registry identity.
func (p *Proxy) walkParent(path []any) (parent reflect.Value, parentID any, lastKey any, ok bool) {
	if len(path) == 0 {
		return reflect.Value{}, nil, nil, false
	}

	cur := p.rv
	curID := any(p.id)

	for i := 0; i < len(path)-1; i++ {
		seg := path[i]
		if !p.kind.readonly() {
			internal.Track(curID, p.ptr, seg)
		}
		next, stepOK := stepInto(cur, seg)
		if !stepOK {
			return reflect.Value{}, nil, nil, false
		}
		cur = next
		curID = internal.TargetID(p.id, joinPath(path[:i+1]))
	}

	return cur, curID, path[len(path)-1], true
}

// walkTracked descends the full path, tracking every hop as a GET, and
// returns the value the path addresses plus its own registry identity.
func (p *Proxy) walkTracked(path []any) (value reflect.Value, id any, ok bool) {
	cur := p.rv
	curID := any(p.id)

	for i, seg := range path {
		if !p.kind.readonly() {
			internal.Track(curID, p.ptr, seg)
		}
		next, stepOK := stepInto(cur, seg)
		if !stepOK {
			return reflect.Value{}, nil, false
		}
		cur = next
		curID = internal.TargetID(p.id, joinPath(path[:i+1]))
	}

	return cur, curID, true
}

// Get reads the value addressed by path, tracking the active effect
// against every level it descends through. Nested structs/slices/maps
// are wrapped lazily (deferred wrapping); refs unwrap to their .value
// unless the container is an array and the key is an integer index.
func (p *Proxy) Get(path ...any) any {
	if len(path) == 0 {
		return p.ptr
	}

	parent, parentID, lastKey, ok := p.walkParent(path)
	if !ok {
		return nil
	}

	if !p.kind.readonly() {
		internal.Track(parentID, p.ptr, lastKey)
	}

	raw, found := readKey(parent, lastKey)
	if !found {
		return nil
	}

	return p.extractLeaf(raw, parent, lastKey)
}

func (p *Proxy) extractLeaf(raw reflect.Value, container reflect.Value, key any) any {
	if !raw.IsValid() || !raw.CanInterface() {
		return nil
	}
	val := raw.Interface()

	if rl, isRef := val.(refLike); isRef {
		_, isIntKey := key.(int)
		if !(isArrayKind(container) && isIntKey) {
			return rl.derefAny()
		}
		return val
	}

	if p.kind.shallow() {
		return val
	}

	return maybeWrapNested(val, p.kind)
}

func maybeWrapNested(val any, kind WrapKind) any {
	rv := reflect.ValueOf(val)
	if rv.Kind() != reflect.Ptr || rv.IsNil() {
		return val
	}
	switch rv.Elem().Kind() {
	case reflect.Struct, reflect.Slice, reflect.Array, reflect.Map:
		if nested := wrap(val, kind); nested != nil {
			return nested
		}
	}
	return val
}

// Set writes value at path, triggering ADD (new key) or SET (changed
// existing key) as appropriate. A no-op with a dev warning on readonly
// proxies.
func (p *Proxy) Set(value any, path ...any) {
	if len(path) == 0 {
		return
	}
	if p.kind.readonly() {
		internal.Warn(fmt.Sprintf("Set operation on key %q failed: target is readonly.", fmt.Sprint(path[len(path)-1])))
		return
	}

	parent, parentID, lastKey, ok := p.walkParent(path)
	if !ok {
		return
	}

	oldRaw, hadKey := readKey(parent, lastKey)
	var oldVal any
	if hadKey && oldRaw.CanInterface() {
		oldVal = oldRaw.Interface()
	}

	if oldRl, isOldRef := oldVal.(refLike); isOldRef {
		if _, isNewRef := value.(refLike); !isNewRef {
			if oldRl.isReadonlyRef() {
				internal.Warn("Set operation on ref failed: target is readonly.")
				return
			}
			oldRl.setAny(value)
			return
		}
	}

	newVal := value
	if !p.kind.shallow() {
		newVal = ToRaw(newVal)
	}

	writeKey(parent, lastKey, newVal)

	isArr := isArrayKind(parent)
	isMap := parent.Kind() == reflect.Map

	if !hadKey {
		internal.Trigger(parentID, p.ptr, internal.TriggerAdd, lastKey, newVal, oldVal, isArr, isMap, 0)
	} else if hasChanged(newVal, oldVal) {
		internal.Trigger(parentID, p.ptr, internal.TriggerSet, lastKey, newVal, oldVal, isArr, isMap, 0)
	}
}

// Has reports membership (JS `in` / comma-ok map semantics), tracking
// the key under the same Dep a Get on it would use.
func (p *Proxy) Has(path ...any) bool {
	parent, parentID, lastKey, ok := p.walkParent(path)
	if !ok {
		return false
	}
	if !p.kind.readonly() {
		internal.Track(parentID, p.ptr, lastKey)
	}
	_, found := readKey(parent, lastKey)
	return found
}

// Delete removes a map key, triggering DELETE. Struct fields and slice
// elements cannot be deleted (Go has no notion of an absent struct
// field or a "hole" in a slice) — use Splice for slices.
func (p *Proxy) Delete(path ...any) bool {
	if p.kind.readonly() {
		internal.Warn("Delete operation failed: target is readonly.")
		return true
	}

	parent, parentID, lastKey, ok := p.walkParent(path)
	if !ok || parent.Kind() != reflect.Map {
		return false
	}

	oldRaw, hadKey := readKey(parent, lastKey)
	if !hadKey {
		return false
	}
	var oldVal any
	if oldRaw.CanInterface() {
		oldVal = oldRaw.Interface()
	}

	parent.SetMapIndex(reflect.ValueOf(lastKey), reflect.Value{})
	internal.Trigger(parentID, p.ptr, internal.TriggerDelete, lastKey, nil, oldVal, false, true, 0)
	return true
}

// Keys enumerates the own keys of the container addressed by path,
// tracking the iterate sentinel (or "length" for arrays).
func (p *Proxy) Keys(path ...any) []any {
	container, id, ok := p.walkTracked(path)
	if !ok {
		return nil
	}

	sentinelKey := any(internal.IterateKey)
	if isArrayKind(container) {
		sentinelKey = internal.LengthKey
	}
	if !p.kind.readonly() {
		internal.Track(id, p.ptr, sentinelKey)
	}

	switch container.Kind() {
	case reflect.Struct:
		t := container.Type()
		keys := make([]any, 0, t.NumField())
		for i := 0; i < t.NumField(); i++ {
			if t.Field(i).IsExported() {
				keys = append(keys, t.Field(i).Name)
			}
		}
		return keys

	case reflect.Slice, reflect.Array:
		keys := make([]any, container.Len())
		for i := range keys {
			keys[i] = i
		}
		return keys

	case reflect.Map:
		keys := make([]any, 0, container.Len())
		for _, k := range container.MapKeys() {
			keys = append(keys, k.Interface())
		}
		return keys
	}

	return nil
}

// Len tracks and returns the length of a slice/array/map addressed by
// path. A map's length is tracked through the iterate sentinel, the
// key its ADD/DELETE triggers fire.
func (p *Proxy) Len(path ...any) int {
	container, id, ok := p.walkTracked(path)
	if !ok {
		return 0
	}
	if !p.kind.readonly() {
		lenKey := any(internal.LengthKey)
		if container.Kind() == reflect.Map {
			lenKey = internal.IterateKey
		}
		internal.Track(id, p.ptr, lenKey)
	}
	switch container.Kind() {
	case reflect.Slice, reflect.Array, reflect.Map:
		return container.Len()
	}
	return 0
}

func hasChanged(a, b any) bool {
	// A changed comparison uses Go equality directly, which already
	// treats two distinct NaN float64s as unequal the way SameValueZero
	// would for everything except NaN, so NaN needs an explicit
	// carve-out.
	af, aIsFloat := a.(float64)
	bf, bIsFloat := b.(float64)
	if aIsFloat && bIsFloat && af != af && bf != bf {
		return false // both NaN
	}

	av, bv := reflect.ValueOf(a), reflect.ValueOf(b)
	if !av.IsValid() || !bv.IsValid() {
		return av.IsValid() != bv.IsValid()
	}
	if av.Type() != bv.Type() {
		return true
	}
	switch av.Kind() {
	case reflect.Slice, reflect.Map, reflect.Func, reflect.Chan:
		// Slices/maps/funcs/chans aren't comparable with ==; identity
		// (same backing data, or both nil) is the closest analogue of
		// reference equality here.
		if av.IsNil() || bv.IsNil() {
			return av.IsNil() != bv.IsNil()
		}
		return av.Pointer() != bv.Pointer()
	}
	return a != b
}
