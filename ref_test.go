package reactive

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRefReadWrite(t *testing.T) {
	// A duplicate write of the same value does not re-fire dependents.
	r := NewRef(1)
	var log []int

	Effect(func() {
		log = append(log, r.Value())
	})

	r.SetValue(2)
	r.SetValue(2)
	r.SetValue(3)

	assert.Equal(t, []int{1, 2, 3}, log)
}

func TestNewRefOfExistingRefWarns(t *testing.T) {
	var warned string
	SetWarnHandler(func(msg string) { warned = msg })
	defer SetWarnHandler(nil)

	inner := NewRef(1)
	outer := NewRef[*Ref[int]](inner)

	assert.NotEmpty(t, warned)
	assert.Same(t, inner, outer.Value())
}

func TestIsRefUnref(t *testing.T) {
	r := NewRef(42)
	assert.True(t, IsRef(r))
	assert.False(t, IsRef(42))
	assert.Equal(t, 42, Unref(r))
	assert.Equal(t, 7, Unref(7))
}

func TestTriggerRefFiresWithoutWrite(t *testing.T) {
	r := NewRef(1)
	calls := 0
	Effect(func() {
		r.Value()
		calls++
	})
	assert.Equal(t, 1, calls)

	TriggerRef(r)
	assert.Equal(t, 2, calls)
}

func TestToRefTracksThroughProxy(t *testing.T) {
	type Box struct{ N int }
	b := &Box{N: 1}
	p := Reactive(b)

	fr := ToRef(p, "N")
	assert.Equal(t, 1, fr.Value())

	var log []any
	Effect(func() {
		log = append(log, fr.Value())
	})

	p.Set(2, "N")
	assert.Equal(t, []any{1, 2}, log)
}

func TestCustomRef(t *testing.T) {
	var stored int
	trackCalls, triggerCalls := 0, 0

	r := CustomRef(func(track func(), trigger func()) (func() int, func(int)) {
		return func() int {
				track()
				trackCalls++
				return stored
			}, func(v int) {
				stored = v
				triggerCalls++
				trigger()
			}
	})

	var log []int
	Effect(func() {
		log = append(log, r.Value())
	})
	r.SetValue(5)

	assert.Equal(t, []int{0, 5}, log)
	assert.Equal(t, 1, triggerCalls)
	assert.True(t, trackCalls >= 2)
}

func TestToRefsMapsEveryKey(t *testing.T) {
	type Box struct {
		N int
		S string
	}
	b := &Box{N: 1, S: "a"}
	p := Reactive(b)

	refs := ToRefs(p)
	assert.Equal(t, 1, refs["N"].Value())
	assert.Equal(t, "a", refs["S"].Value())

	p.Set(2, "N")
	assert.Equal(t, 2, refs["N"].Value())
}

func TestToRefWithDefaultFallsBackWhenKeyAbsent(t *testing.T) {
	p := Reactive(&map[string]int{})
	fr := ToRefWithDefault(p, 42, "missing")
	assert.Equal(t, 42, fr.Value())

	p.Set(7, "missing")
	assert.Equal(t, 7, fr.Value())
}

func TestProxyRefsUnwrapsAndWritesThrough(t *testing.T) {
	n := NewRef(1)
	refs := map[string]*Ref[int]{"count": n}
	pr := ProxyRefs(refs)

	assert.Equal(t, 1, pr.Get("count"))

	pr.Set("count", 5)
	assert.Equal(t, 5, n.Value())
	assert.Equal(t, 5, pr.Get("count"))
}

func TestRefSetOnReadonlyWarns(t *testing.T) {
	type Box struct{ N int }
	b := &Box{N: 1}
	p := Readonly(b)
	fr := ToRef(p, "N")

	var warned string
	SetWarnHandler(func(msg string) { warned = msg })
	defer SetWarnHandler(nil)

	fr.SetValue(99)
	assert.Equal(t, 1, fr.Value())
	assert.NotEmpty(t, warned)
}
