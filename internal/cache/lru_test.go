package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProjectLRUGetAdd(t *testing.T) {
	c, err := NewProjectLRU[int](2, nil)
	require.NoError(t, err)

	c.Add("a", 1)
	v, ok := c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 1, v)

	_, ok = c.Get("missing")
	assert.False(t, ok)
}

func TestProjectLRUEvictsLeastRecentlyUsed(t *testing.T) {
	var evicted []string
	c, err := NewProjectLRU[int](2, func(key string, value int) {
		evicted = append(evicted, key)
	})
	require.NoError(t, err)

	c.Add("a", 1)
	c.Add("b", 2)
	c.Get("a") // touch a, making b the least-recently-used
	c.Add("c", 3)

	require.Len(t, evicted, 1)
	assert.Equal(t, "b", evicted[0])
	assert.Equal(t, 2, c.Len())

	_, ok := c.Get("b")
	assert.False(t, ok)
}

func TestProjectLRURemoveRunsEvictionCallback(t *testing.T) {
	var evicted []string
	c, err := NewProjectLRU[int](5, func(key string, value int) {
		evicted = append(evicted, key)
	})
	require.NoError(t, err)

	c.Add("a", 1)
	c.Remove("a")
	assert.Equal(t, []string{"a"}, evicted)
	assert.Equal(t, 0, c.Len())
}
