package internal

// maxMarkerBits is the number of recursion levels the bitmask
// reconciliation in Dep.was/Dep.newly can address. Effects nested
// deeper than this fall back to full cleanup (see EffectNode.Run).
const maxMarkerBits = 30

// Dep is the subscriber set for one observable slot: one per
// (target, key) pair in the tracking registry, one per Ref, or one per
// Computed's output. was/newly are bitmasks used by the incremental
// re-tracking protocol: bit i corresponds to recursion depth i: was
// records "this dep was subscribed by the effect at depth i before
// this run", newly records "the effect at depth i has tracked this dep
// during the current run".
type Dep struct {
	effects map[*EffectNode]struct{}
	was     int32
	newly   int32

	// debug-only fields. Track/Trigger do not set them; the onTrack/
	// onTrigger events carry their own target and key.
	target any
	key    any
}

// NewDep creates an empty dependency set.
func NewDep() *Dep {
	return &Dep{effects: make(map[*EffectNode]struct{})}
}

func (d *Dep) has(e *EffectNode) bool {
	_, ok := d.effects[e]
	return ok
}

func (d *Dep) add(e *EffectNode) {
	d.effects[e] = struct{}{}
}

func (d *Dep) delete(e *EffectNode) {
	delete(d.effects, e)
}

// Len reports the number of subscribed effects.
func (d *Dep) Len() int {
	return len(d.effects)
}

// snapshot returns a stable copy of the subscriber set so callers can
// fire effects without the set mutating under iteration (an effect
// re-running can itself subscribe to or drop this very dep).
func (d *Dep) snapshot() []*EffectNode {
	out := make([]*EffectNode, 0, len(d.effects))
	for e := range d.effects {
		out = append(out, e)
	}
	return out
}

func (d *Dep) wasTracked(bit int32) bool  { return d.was&bit != 0 }
func (d *Dep) newlyTracked(bit int32) bool { return d.newly&bit != 0 }
