package reactive

import "github.com/quartzdag/quartz/internal"

// Computed is a lazy, cached derivation built on Effect + Ref.
type Computed[T any] struct {
	node *internal.ComputedNode
}

// ComputedOptions configures a computed as either a getter alone, or a
// getter+setter pair plus onTrack/onTrigger debug hooks.
type ComputedOptions[T any] struct {
	Get       func() T
	Set       func(T)
	OnTrack   func(internal.TrackEvent)
	OnTrigger func(internal.TriggerEvent)
}

// NewComputed builds a read-only computed from a getter alone.
func NewComputed[T any](getter func() T) *Computed[T] {
	return NewComputedWithOptions(ComputedOptions[T]{Get: getter})
}

// NewComputedWithOptions builds a computed with an optional setter and
// debug hooks.
func NewComputedWithOptions[T any](opts ComputedOptions[T]) *Computed[T] {
	var setter func(any)
	if opts.Set != nil {
		setter = func(v any) { opts.Set(v.(T)) }
	}

	node := internal.NewComputedNode(func() any { return opts.Get() }, setter, true)
	node.Effect().OnTrack = opts.OnTrack
	node.Effect().OnTrigger = opts.OnTrigger

	return &Computed[T]{node: node}
}

// Value reads the computed, recomputing if dirty.
func (c *Computed[T]) Value() T {
	v := c.node.Value()
	if v == nil {
		var zero T
		return zero
	}
	return v.(T)
}

// SetValue delegates to the user-supplied setter, if any. A computed
// with no setter simply ignores writes.
func (c *Computed[T]) SetValue(v T) { c.node.Set(v) }

// Stop tears down the backing effect so this computed no longer
// recomputes on future dependency changes.
func (c *Computed[T]) Stop() { c.node.Stop() }

func (c *Computed[T]) derefAny() any { return c.Value() }
func (c *Computed[T]) setAny(v any)  { c.node.Set(v) }
func (c *Computed[T]) isReadonlyRef() bool { return false }
