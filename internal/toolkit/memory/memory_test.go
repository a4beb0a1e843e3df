package memory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToolkit_Lifecycle(t *testing.T) {
	tk := New()

	c, err := tk.Create()
	require.NoError(t, err)
	assert.NotEmpty(t, c.ID)
	assert.Equal(t, 1, tk.Live())

	require.NoError(t, tk.Attach("A", c))
	child, ok := c.Child()
	assert.True(t, ok)
	assert.Equal(t, "A", child)

	require.NoError(t, tk.Detach("A", c))
	_, ok = c.Child()
	assert.False(t, ok)

	require.NoError(t, tk.Destroy(c))
	assert.True(t, c.Destroyed())
	assert.Equal(t, 0, tk.Live())

	assert.Equal(t, []Event{
		{Op: OpCreate, Container: c.ID},
		{Op: OpAttach, Container: c.ID, Content: "A"},
		{Op: OpDetach, Container: c.ID, Content: "A"},
		{Op: OpDestroy, Container: c.ID},
	}, tk.Events())
}

func TestToolkit_CreateReturnsDistinctContainers(t *testing.T) {
	tk := New()
	a, err := tk.Create()
	require.NoError(t, err)
	b, err := tk.Create()
	require.NoError(t, err)

	assert.NotSame(t, a, b)
	assert.NotEqual(t, a.ID, b.ID)
}

func TestToolkit_Capacity(t *testing.T) {
	tk := New(WithCapacity(1))

	c, err := tk.Create()
	require.NoError(t, err)

	_, err = tk.Create()
	assert.ErrorIs(t, err, ErrExhausted)

	// Destroying frees a slot.
	require.NoError(t, tk.Destroy(c))
	_, err = tk.Create()
	assert.NoError(t, err)
}

func TestToolkit_DoubleDestroy(t *testing.T) {
	tk := New()
	c, err := tk.Create()
	require.NoError(t, err)

	require.NoError(t, tk.Destroy(c))
	assert.ErrorIs(t, tk.Destroy(c), ErrDestroyed)
	assert.ErrorIs(t, tk.Attach("A", c), ErrDestroyed)
	assert.Equal(t, 1, tk.Count(OpDestroy))
}

func TestToolkit_AttachOccupied(t *testing.T) {
	tk := New()
	c, err := tk.Create()
	require.NoError(t, err)

	require.NoError(t, tk.Attach("A", c))
	assert.NoError(t, tk.Attach("A", c), "re-attaching the same child is allowed")
	assert.ErrorIs(t, tk.Attach("B", c), ErrOccupied)
}
