package internal

// ComputedNode is a lazy, cached derivation: a getter wrapped in an
// EffectNode whose Scheduler marks dirty and triggers the output Dep
// instead of eagerly recomputing.
type ComputedNode struct {
	Getter    func() any
	Setter    func(any)
	Cacheable bool

	value any
	dirty bool

	effect *EffectNode
	output *RefNode
}

// NewComputedNode builds a computed derivation. The getter is not run
// on construction; it runs on first read.
func NewComputedNode(getter func() any, setter func(any), cacheable bool) *ComputedNode {
	c := &ComputedNode{
		Getter:    getter,
		Setter:    setter,
		Cacheable: cacheable,
		dirty:     true,
		output:    NewRefNode(nil),
	}

	c.effect = NewEffectNode(func() {
		c.value = getter()
	})
	c.effect.ComputedOwner = c
	c.effect.Scheduler = func() {
		if !c.dirty {
			c.dirty = true
			TriggerDep(c.output.dep)
		}
	}

	return c
}

// Value implements the read protocol: track the output Dep, recompute
// if dirty or uncacheable (SSR mode disables memoization), return the
// cached value.
func (c *ComputedNode) Value() any {
	TrackDep(c.output.dep)

	if c.dirty || !c.Cacheable {
		c.dirty = false
		c.effect.Run()
	}

	return c.value
}

// Set delegates to the user-supplied setter, if any.
func (c *ComputedNode) Set(v any) {
	if c.Setter != nil {
		c.Setter(v)
	}
}

// Stop tears down the backing effect so the computed no longer
// recomputes on future dependency changes.
func (c *ComputedNode) Stop() {
	c.effect.Stop()
}

// Effect exposes the backing EffectNode (e.g. for tests asserting on
// recursion/nesting behavior).
func (c *ComputedNode) Effect() *EffectNode { return c.effect }
