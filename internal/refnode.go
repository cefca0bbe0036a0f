package internal

// RefNode is the inline Dep + raw storage behind a single-cell
// observable. The nested-object wrapping decision (whether to route a
// written value through Reactive())
// belongs to the typed Ref[T] in the public package, which is the
// only place that knows T; RefNode only ever stores what it is given.
type RefNode struct {
	dep   *Dep
	value any
}

func NewRefNode(initial any) *RefNode {
	return &RefNode{dep: NewDep(), value: initial}
}

// Read tracks the active effect against this ref's Dep and returns the
// stored value.
func (r *RefNode) Read() any {
	TrackDep(r.dep)
	return r.value
}

// RawValue returns the stored value without tracking, for internal
// bookkeeping (e.g. Computed reading its own output node is itself a
// tracked operation performed separately).
func (r *RefNode) RawValue() any {
	return r.value
}

// Write stores v and triggers the ref's Dep. Callers are expected to
// have already checked hasChanged; Write always triggers.
func (r *RefNode) Write(v any) {
	r.value = v
	TriggerDep(r.dep)
}

// Dep exposes the inline Dep, e.g. so CustomRef can drive it manually.
func (r *RefNode) Dep() *Dep { return r.dep }

// TrackDep subscribes the active effect to an arbitrary Dep directly,
// used by Ref/Computed whose Dep isn't addressed through the
// target/key registry.
func TrackDep(dep *Dep) {
	assertSingleGoroutine()
	if !shouldTrackValue || activeEffect == nil {
		return
	}
	trackEffects(dep)
	if activeEffect.OnTrack != nil {
		activeEffect.OnTrack(TrackEvent{Target: dep, Key: "value"})
	}
}

// TriggerDep fires every effect subscribed to dep directly.
func TriggerDep(dep *Dep) {
	assertSingleGoroutine()
	fireDeps([]*Dep{dep}, TriggerEvent{Target: dep, Type: TriggerSet, Key: "value"})
}
