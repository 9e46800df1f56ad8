package gateway

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestObservableDeliversCurrentValueOnSubscribe(t *testing.T) {
	o := NewObservable(1)
	o.Publish(2)

	var got []int
	sub := o.Subscribe(func(v int) { got = append(got, v) })
	defer sub.Unsubscribe()

	assert.Equal(t, []int{2}, got)
}

func TestObservableDeliversInOrder(t *testing.T) {
	o := NewObservable("a")

	var got []string
	sub := o.Subscribe(func(v string) { got = append(got, v) })
	o.Publish("b")
	o.Publish("c")
	sub.Unsubscribe()
	o.Publish("d")

	assert.Equal(t, []string{"a", "b", "c"}, got)
	assert.Equal(t, "d", o.Value())
	assert.False(t, o.HasSubscribers())
}

func TestUnsubscribeFromCallback(t *testing.T) {
	o := NewObservable(0)

	calls := 0
	var sub *Subscription
	sub = o.Subscribe(func(v int) {
		calls++
		if v == 1 {
			sub.Unsubscribe()
		}
	})
	o.Publish(1)
	o.Publish(2)

	assert.Equal(t, 2, calls)
	sub.Unsubscribe()
}
