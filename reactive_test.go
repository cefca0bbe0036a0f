package reactive

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type Address struct {
	City string
}

type Person struct {
	Name    string
	Age     int
	Address *Address
	Tags    []string
	Scores  map[string]int
}

func TestToRawIdentity(t *testing.T) {
	// toRaw(reactive(x)) === x, reactive(x) is identity-stable, and
	// reactive(reactive(x)) === reactive(x).
	p := &Person{Name: "Ada"}
	r1 := Reactive(p)
	r2 := Reactive(p)

	assert.Same(t, r1, r2)
	assert.Equal(t, p, ToRaw(r1))

	nested := Reactive(r1)
	assert.Same(t, r1, nested)
}

func TestReactiveOfReadonlyReresolvesUnderNewKind(t *testing.T) {
	// Reactive(Readonly(x)) must not wrap the *Proxy struct itself; it
	// re-resolves the same underlying target under KindReactive.
	p := &Person{Name: "Ada"}
	ro := Readonly(p)
	reactivized := Reactive(ro)

	assert.True(t, IsReactive(reactivized))
	assert.Equal(t, p, ToRaw(reactivized))
	assert.Same(t, Reactive(p), reactivized)
}

func TestGetSetTracksAndTriggers(t *testing.T) {
	p := Reactive(&Person{Name: "Ada", Age: 30})

	var log []any
	Effect(func() {
		log = append(log, p.Get("Age"))
	})

	p.Set(31, "Age")
	p.Set(31, "Age") // no change: hasChanged is false, must not re-fire
	p.Set(32, "Age")

	assert.Equal(t, []any{30, 31, 32}, log)
}

func TestNestedStructAutoWraps(t *testing.T) {
	p := Reactive(&Person{Address: &Address{City: "Lyon"}})

	nested := p.Get("Address")
	nestedProxy, ok := nested.(*Proxy)
	assert.True(t, ok)
	assert.True(t, IsReactive(nestedProxy))

	var log []any
	Effect(func() {
		log = append(log, p.Get("Address", "City"))
	})

	p.Set("Paris", "Address", "City")
	assert.Equal(t, []any{"Lyon", "Paris"}, log)
}

func TestHasAndDeleteOnMap(t *testing.T) {
	p := Reactive(&Person{Scores: map[string]int{"math": 90}})

	assert.True(t, p.Has("Scores", "math"))
	assert.False(t, p.Has("Scores", "history"))

	var log []bool
	Effect(func() {
		log = append(log, p.Has("Scores", "history"))
	})

	p.Set(70, "Scores", "history")
	assert.Equal(t, []bool{false, true}, log)

	ok := p.Delete("Scores", "history")
	assert.True(t, ok)
	assert.False(t, p.Has("Scores", "history"))
}

func TestKeysEnumeratesStructFields(t *testing.T) {
	p := Reactive(&Person{Name: "Ada", Age: 30})
	keys := p.Keys()
	assert.Contains(t, keys, "Name")
	assert.Contains(t, keys, "Age")
}

func TestReadonlySetIsNoOpWithWarning(t *testing.T) {
	p := Readonly(&Person{Name: "Ada"})

	var warned string
	SetWarnHandler(func(msg string) { warned = msg })
	defer SetWarnHandler(nil)

	p.Set("Grace", "Name")
	assert.Equal(t, "Ada", p.Get("Name"))
	assert.NotEmpty(t, warned)
}

func TestShallowReactiveDoesNotWrapNested(t *testing.T) {
	p := ShallowReactive(&Person{Address: &Address{City: "Lyon"}})
	nested := p.Get("Address")
	_, isProxy := nested.(*Proxy)
	assert.False(t, isProxy)
}

func TestMarkRawPreventsWrapping(t *testing.T) {
	addr := &Address{City: "Lyon"}
	MarkRaw(addr)

	p := Reactive(&Person{Address: addr})
	nested := p.Get("Address")
	_, isProxy := nested.(*Proxy)
	assert.False(t, isProxy)
}

func TestSetOnSliceValuedFieldDoesNotPanic(t *testing.T) {
	// Tags is []string, an uncomparable type when boxed in an any;
	// hasChanged must not fall through to a bare == on it.
	p := Reactive(&Person{Tags: []string{"a"}})

	assert.NotPanics(t, func() {
		p.Set([]string{"a", "b"}, "Tags")
	})
	assert.Equal(t, []string{"a", "b"}, p.Get("Tags"))
}

func TestRefFieldAutoUnwraps(t *testing.T) {
	type Cart struct {
		Total *Ref[int]
	}
	c := &Cart{Total: NewRef(100)}
	p := Reactive(c)

	assert.Equal(t, 100, p.Get("Total"))

	p.Set(200, "Total")
	assert.Equal(t, 200, c.Total.Value())
}
