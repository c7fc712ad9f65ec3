package registry

import (
	"fmt"
	"sync"
	"testing"

	"github.com/arthur-debert/pkgmerge/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type digestFunc func([]byte) string

func TestRegisterAndGet(t *testing.T) {
	reg := New[digestFunc]("checksum handler")
	require.NoError(t, reg.Register("md5", func([]byte) string { return "md5" }))

	got, err := reg.Get("md5")
	require.NoError(t, err)
	assert.Equal(t, "md5", got(nil))
	assert.Equal(t, 1, reg.Count())
	assert.True(t, reg.Has("md5"))
	assert.False(t, reg.Has("sha1"))
}

func TestRegisterRejects(t *testing.T) {
	reg := New[int]("trigger factory")

	err := reg.Register("", 1)
	assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput), "got %v", err)

	require.NoError(t, reg.Register("ldconfig", 1))
	err = reg.Register("ldconfig", 2)
	assert.True(t, errors.IsErrorCode(err, errors.ErrAlreadyExists), "got %v", err)
	assert.Contains(t, err.Error(), "trigger factory 'ldconfig'")
}

func TestGetMissingIsLookupError(t *testing.T) {
	reg := New[int]("")

	_, err := reg.Get("blake2")
	assert.True(t, errors.IsErrorCode(err, errors.ErrLookup), "got %v", err)
	assert.Equal(t, "blake2", errors.GetErrorDetails(err)["name"])

	err = reg.Remove("blake2")
	assert.True(t, errors.IsErrorCode(err, errors.ErrLookup), "got %v", err)
}

func TestReplaceAndRemove(t *testing.T) {
	reg := New[string]("item")

	assert.False(t, reg.Replace("a", "one"))
	assert.True(t, reg.Replace("a", "two"))
	v, err := reg.Get("a")
	require.NoError(t, err)
	assert.Equal(t, "two", v)

	require.NoError(t, reg.Remove("a"))
	assert.Equal(t, 0, reg.Count())
}

func TestListIsSorted(t *testing.T) {
	reg := New[int]("item")
	for i, name := range []string{"sha256", "md5", "blake3", "xxh3"} {
		require.NoError(t, reg.Register(name, i))
	}
	assert.Equal(t, []string{"blake3", "md5", "sha256", "xxh3"}, reg.List())
}

func TestConcurrency(t *testing.T) {
	reg := New[int]("item")
	const goroutines = 10
	const itemsPerGoroutine = 100

	var wg sync.WaitGroup
	wg.Add(goroutines)
	for g := 0; g < goroutines; g++ {
		go func(id int) {
			defer wg.Done()
			for i := 0; i < itemsPerGoroutine; i++ {
				name := fmt.Sprintf("g%d_item%d", id, i)
				if err := reg.Register(name, id*1000+i); err != nil {
					t.Errorf("concurrent Register() failed: %v", err)
				}
				if _, err := reg.Get(name); err != nil {
					t.Errorf("concurrent Get() failed: %v", err)
				}
			}
		}(g)
	}
	wg.Wait()

	assert.Equal(t, goroutines*itemsPerGoroutine, reg.Count())
}

func TestMustRegister(t *testing.T) {
	reg := New[int]("item")
	assert.NotPanics(t, func() { MustRegister(reg, "a", 1) })
	assert.Panics(t, func() { MustRegister(reg, "a", 2) })
}
