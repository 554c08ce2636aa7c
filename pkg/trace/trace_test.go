package trace

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder_Order(t *testing.T) {
	r := NewRecorder(nil)
	r.Record("first")
	r.Recordf("second: %d neighbors", 10)
	r.Record("third")

	msgs := r.Messages()
	require.Len(t, msgs, 3)
	assert.Equal(t, 0, msgs[0].Seq)
	assert.Equal(t, 1, msgs[1].Seq)
	assert.Equal(t, 2, msgs[2].Seq)
	assert.Equal(t, []string{"first", "second: 10 neighbors", "third"}, r.Texts())
}

func TestRecorder_MessagesReturnsCopy(t *testing.T) {
	r := NewRecorder(nil)
	r.Record("one")

	msgs := r.Messages()
	msgs[0].Text = "mutated"

	assert.Equal(t, "one", r.Texts()[0])
}

func TestRecorder_ConcurrentAppends(t *testing.T) {
	r := NewRecorder(nil)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			r.Recordf("msg %d", n)
		}(i)
	}
	wg.Wait()

	msgs := r.Messages()
	require.Len(t, msgs, 50)
	for i, m := range msgs {
		assert.Equal(t, i, m.Seq, fmt.Sprintf("seq gap at %d", i))
	}
}
