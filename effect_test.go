package reactive

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEffectRunsOnceOnCreation(t *testing.T) {
	calls := 0
	Effect(func() { calls++ })
	assert.Equal(t, 1, calls)
}

func TestEffectLazyDoesNotRunImmediately(t *testing.T) {
	calls := 0
	r := Effect(func() { calls++ }, EffectOptions{Lazy: true})
	assert.Equal(t, 0, calls)
	r.Run()
	assert.Equal(t, 1, calls)
}

func TestStopPreventsFurtherReruns(t *testing.T) {
	// After stop(runner), mutations to previously-observed deps never
	// re-invoke runner.
	r := NewRef(1)
	calls := 0
	runner := Effect(func() {
		r.Value()
		calls++
	})
	assert.Equal(t, 1, calls)

	Stop(runner)
	r.SetValue(2)
	r.SetValue(3)
	assert.Equal(t, 1, calls)
}

func TestDynamicDepSetReconciliation(t *testing.T) {
	// After the branch flips, writes to the dropped dependency no
	// longer re-fire the effect.
	type Obj struct {
		A int
		B int
		C bool
	}
	o := Reactive(&Obj{A: 1, B: 2, C: true})

	var log []int
	Effect(func() {
		if o.Get("C").(bool) {
			log = append(log, o.Get("A").(int))
		} else {
			log = append(log, o.Get("B").(int))
		}
	})

	o.Set(false, "C")
	o.Set(10, "A") // no longer tracked; must not re-fire

	assert.Equal(t, []int{1, 2}, log)
}

func TestEffectDoesNotReenterItself(t *testing.T) {
	r := NewRef(0)
	calls := 0
	var runner *Runner
	runner = Effect(func() {
		calls++
		if calls < 5 {
			r.SetValue(r.Value() + 1)
		}
	})
	_ = runner
	assert.Equal(t, 1, calls) // self-recurse guard: no re-entry without AllowRecurse
}

func TestNestedEffectsIsolateSubscriptions(t *testing.T) {
	// Mutating the inner ref re-fires only the inner effect; the stale
	// inner created by a previous outer run is detached once the outer
	// re-runs.
	r1 := NewRef(1)
	r2 := NewRef(1)

	outerRuns, innerRuns := 0, 0
	Effect(func() {
		r1.Value()
		outerRuns++
		Effect(func() {
			r2.Value()
			innerRuns++
		})
	})

	assert.Equal(t, 1, outerRuns)
	assert.Equal(t, 1, innerRuns)

	r2.SetValue(2)
	assert.Equal(t, 1, outerRuns)
	assert.Equal(t, 2, innerRuns)

	r1.SetValue(2)
	assert.Equal(t, 2, outerRuns)
	assert.Equal(t, 3, innerRuns) // the stale inner is stopped, and a fresh one runs once

	r2.SetValue(3)
	assert.Equal(t, 2, outerRuns)
	assert.Equal(t, 4, innerRuns) // only the fresh inner is subscribed now
}

func TestEffectScopeStopsOwnedEffects(t *testing.T) {
	r := NewRef(1)
	calls := 0

	scope := NewEffectScope(false)
	scope.Run(func() {
		Effect(func() {
			r.Value()
			calls++
		})
	})
	assert.Equal(t, 1, calls)

	r.SetValue(2)
	assert.Equal(t, 2, calls)

	scope.Stop()
	r.SetValue(3)
	assert.Equal(t, 2, calls)
}

func TestOnScopeDisposeRunsOnStop(t *testing.T) {
	disposed := false
	scope := NewEffectScope(false)
	scope.Run(func() {
		OnScopeDispose(func() { disposed = true })
	})
	assert.False(t, disposed)
	scope.Stop()
	assert.True(t, disposed)
}
