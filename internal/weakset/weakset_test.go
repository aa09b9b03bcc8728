package weakset

import (
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type sheet struct {
	href string
	body [64]byte
}

func TestAddHas(t *testing.T) {
	s := New[sheet]()
	a := &sheet{href: "https://cdn.test/a.css"}
	b := &sheet{href: "https://cdn.test/a.css"}

	assert.False(t, s.Has(a))
	assert.True(t, s.Add(a))
	assert.False(t, s.Add(a), "second insert of the same pointer")
	assert.True(t, s.Has(a))

	// same href, different object
	assert.False(t, s.Has(b))
	assert.True(t, s.Add(b))
	assert.Equal(t, 2, s.Len())

	runtime.KeepAlive(a)
	runtime.KeepAlive(b)
}

func TestNil(t *testing.T) {
	var s Set[sheet]
	assert.False(t, s.Add(nil))
	assert.False(t, s.Has(nil))
	assert.Zero(t, s.Len())
}

func TestZeroValue(t *testing.T) {
	var s Set[sheet]
	p := &sheet{}
	assert.True(t, s.Add(p))
	assert.True(t, s.Has(p))
	runtime.KeepAlive(p)
}

func TestCollectedMembersAreForgotten(t *testing.T) {
	s := New[sheet]()
	kept := &sheet{href: "kept"}
	s.Add(kept)

	func() {
		for i := 0; i < 16; i++ {
			s.Add(&sheet{href: "dropped"})
		}
	}()

	assert.Eventually(t, func() bool {
		runtime.GC()
		return s.Len() == 1
	}, 5*time.Second, 10*time.Millisecond)

	assert.True(t, s.Has(kept))
	runtime.KeepAlive(kept)
}
