package internal

// TriggerType classifies the write that invoked Trigger, matching the
// dispatch rules below to the distinct shapes of set/add/delete/clear.
type TriggerType int

const (
	TriggerSet TriggerType = iota
	TriggerAdd
	TriggerDelete
	TriggerClear
)

// IterateKey and MapKeyIterateKey are the synthetic sentinel keys used
// to observe "any key" membership (ownKeys / for-in) and, for map-like
// targets, key-iteration specifically.
type sentinel string

const (
	IterateKey       sentinel = "@@iterate"
	MapKeyIterateKey sentinel = "@@mapKeyIterate"
	LengthKey        string   = "length"
)

// TrackEvent and TriggerEvent carry the information an onTrack/
// onTrigger debug callback needs to describe a dependency access or
// invalidation to an external devtools-style collaborator.
type TrackEvent struct {
	Target any
	Key    any
}

type TriggerEvent struct {
	Target   any
	Type     TriggerType
	Key      any
	NewValue any
	OldValue any
}

// keyMap is the per-target slot: key -> Dep.
type keyMap map[any]*Dep

// Target identities are `any`: a root container is keyed by the
// uintptr of the pointer passed to Reactive/Readonly/..., while a
// nested container reached by path is keyed by a composite string
// derived from the root id plus the path prefix (see TargetID below).
// Both are comparable, so a single map serves
// both without needing per-level pointer identities that Go's
// reflect package cannot cheaply produce for value-embedded fields.
var registry = make(map[any]keyMap)

// Evict drops every Dep for a target identity, plus any nested
// sub-container entries whose composite id was derived from it.
// Invoked when the target becomes unreachable, so a garbage-collected
// target doesn't leak its dep map forever.
func Evict(id uintptr) {
	delete(registry, id)
	for k := range registry {
		if composite, ok := k.(compositeID); ok && composite.root == id {
			delete(registry, k)
		}
	}
}

// compositeID addresses a nested container reached by a path prefix
// under a root target.
type compositeID struct {
	root   uintptr
	prefix string
}

// TargetID returns the identity to Track/Trigger against for a given
// root id and path prefix (empty prefix means the root itself).
func TargetID(root uintptr, prefix string) any {
	if prefix == "" {
		return root
	}
	return compositeID{root: root, prefix: prefix}
}

func depFor(id any, key any, create bool) *Dep {
	slots, ok := registry[id]
	if !ok {
		if !create {
			return nil
		}
		slots = make(keyMap)
		registry[id] = slots
	}
	dep, ok := slots[key]
	if !ok {
		if !create {
			return nil
		}
		dep = NewDep()
		slots[key] = dep
	}
	return dep
}

// Track records a subscription of the active effect to (id, key). A
// no-op when ShouldTrack() is false or no effect is active.
func Track(id any, target any, key any) {
	assertSingleGoroutine()

	if !shouldTrackValue || activeEffect == nil {
		return
	}

	dep := depFor(id, key, true)
	trackEffects(dep)

	if activeEffect.OnTrack != nil {
		activeEffect.OnTrack(TrackEvent{Target: target, Key: key})
	}
}

// Trigger re-schedules every effect subscribed to the Deps affected by
// a write to (id, key), per the type/key/isArray/isMapLike dispatch
// below.
func Trigger(id any, target any, typ TriggerType, key any, newValue, oldValue any, isArray, isMapLike bool, newLength int) {
	assertSingleGoroutine()

	slots, ok := registry[id]
	if !ok {
		return
	}

	var deps []*Dep

	switch {
	case typ == TriggerClear:
		for _, dep := range slots {
			deps = append(deps, dep)
		}

	case typ == TriggerSet && key == LengthKey && isArray:
		for k, dep := range slots {
			if k == LengthKey {
				deps = append(deps, dep)
				continue
			}
			if idx, ok := k.(int); ok && idx >= newLength {
				deps = append(deps, dep)
			}
		}

	case typ == TriggerAdd && isArray:
		if dep, ok := slots[LengthKey]; ok {
			deps = append(deps, dep)
		}

	case typ == TriggerAdd && !isArray:
		if dep, ok := slots[key]; ok {
			deps = append(deps, dep)
		}
		if dep, ok := slots[IterateKey]; ok {
			deps = append(deps, dep)
		}
		if isMapLike {
			if dep, ok := slots[MapKeyIterateKey]; ok {
				deps = append(deps, dep)
			}
		}

	case typ == TriggerDelete && !isArray:
		if dep, ok := slots[key]; ok {
			deps = append(deps, dep)
		}
		if dep, ok := slots[IterateKey]; ok {
			deps = append(deps, dep)
		}
		if isMapLike {
			if dep, ok := slots[MapKeyIterateKey]; ok {
				deps = append(deps, dep)
			}
		}

	case typ == TriggerSet && isMapLike:
		if dep, ok := slots[key]; ok {
			deps = append(deps, dep)
		}
		if dep, ok := slots[IterateKey]; ok {
			deps = append(deps, dep)
		}

	default: // plain "set"
		if dep, ok := slots[key]; ok {
			deps = append(deps, dep)
		}
	}

	fireDeps(deps, TriggerEvent{Target: target, Type: typ, Key: key, NewValue: newValue, OldValue: oldValue})
}

// fireDeps merges the affected Deps (stabilizing iteration by
// flattening their members into a single deduplicated set when several
// Deps are affected) and fires computed-owning effects before plain
// ones.
func fireDeps(deps []*Dep, event TriggerEvent) {
	if len(deps) == 0 {
		return
	}

	var effects []*EffectNode
	if len(deps) == 1 {
		effects = deps[0].snapshot()
	} else {
		seen := make(map[*EffectNode]struct{})
		for _, dep := range deps {
			for e := range dep.effects {
				if _, ok := seen[e]; !ok {
					seen[e] = struct{}{}
					effects = append(effects, e)
				}
			}
		}
	}

	var computedEffects, plainEffects []*EffectNode
	for _, e := range effects {
		if e.ComputedOwner != nil {
			computedEffects = append(computedEffects, e)
		} else {
			plainEffects = append(plainEffects, e)
		}
	}

	fireAll(computedEffects, event)
	fireAll(plainEffects, event)
}

func fireAll(effects []*EffectNode, event TriggerEvent) {
	for _, e := range effects {
		if e == activeEffect && !e.AllowRecurse {
			continue
		}

		if e.OnTrigger != nil {
			e.OnTrigger(event)
		}

		if e.Scheduler != nil {
			e.Scheduler()
		} else {
			e.Run()
		}
	}
}
