package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRegistry_NotifyAll(t *testing.T) {
	var r Registry[int]

	var got1, got2 []int
	r.Add(func(v int) { got1 = append(got1, v) })
	r.Add(func(v int) { got2 = append(got2, v) })

	n := 0
	r.Notify(func() int { n++; return n })

	assert.Equal(t, []int{1}, got1)
	assert.Equal(t, []int{2}, got2, "each callback gets its own value")
	assert.Equal(t, 2, r.Len())
}

func TestRegistry_RemoveIsIdempotent(t *testing.T) {
	var r Registry[string]

	calls := 0
	remove := r.Add(func(string) { calls++ })
	keep := 0
	r.Add(func(string) { keep++ })

	remove()
	remove()

	r.Notify(func() string { return "x" })

	assert.Equal(t, 0, calls)
	assert.Equal(t, 1, keep)
	assert.Equal(t, 1, r.Len())
}

func TestRegistry_CallbackMayUnsubscribe(t *testing.T) {
	var r Registry[int]

	calls := 0
	var remove func()
	remove = r.Add(func(int) {
		calls++
		remove()
	})

	r.Notify(func() int { return 0 })
	r.Notify(func() int { return 0 })

	assert.Equal(t, 1, calls)
	assert.Equal(t, 0, r.Len())
}

func TestRegistry_Order(t *testing.T) {
	var r Registry[int]

	var order []string
	r.Add(func(int) { order = append(order, "a") })
	removeB := r.Add(func(int) { order = append(order, "b") })
	r.Add(func(int) { order = append(order, "c") })
	removeB()

	r.Notify(func() int { return 0 })

	assert.Equal(t, []string{"a", "c"}, order)
}
