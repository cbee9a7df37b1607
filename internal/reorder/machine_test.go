package reorder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCommitter struct {
	order      []string
	columns    map[string]int
	fullscreen map[string]bool

	committed       bool
	committedOrder  []string
	committedMoved  string
	committedColumn int
}

func newFakeCommitter(ids ...string) *fakeCommitter {
	c := &fakeCommitter{order: ids, columns: map[string]int{}, fullscreen: map[string]bool{}}
	for _, id := range ids {
		c.columns[id] = 0
	}
	return c
}

func (c *fakeCommitter) Order() []string { return append([]string(nil), c.order...) }

func (c *fakeCommitter) ColumnOf(id string) (int, bool) {
	col, ok := c.columns[id]
	return col, ok
}

func (c *fakeCommitter) IsFullscreen(id string) bool { return c.fullscreen[id] }

func (c *fakeCommitter) CommitReorder(order []string, moved string, column int) error {
	c.committed = true
	c.committedOrder = order
	c.committedMoved = moved
	c.committedColumn = column
	return nil
}

func TestMachine_Start(t *testing.T) {
	c := newFakeCommitter("c-a", "c-b")
	m := NewMachine(c)

	require.NoError(t, m.Start("c-a"))
	assert.Equal(t, Dragging, m.State())
	assert.Equal(t, "c-a", m.Source())

	assert.ErrorIs(t, m.Start("c-b"), ErrGestureActive)
}

func TestMachine_Start_UnknownId(t *testing.T) {
	m := NewMachine(newFakeCommitter("c-a"))
	assert.ErrorIs(t, m.Start("c-x"), ErrUnknownContainer)
	assert.Equal(t, Idle, m.State())
}

func TestMachine_Start_FullscreenRejected(t *testing.T) {
	c := newFakeCommitter("c-a")
	c.fullscreen["c-a"] = true
	m := NewMachine(c)
	assert.ErrorIs(t, m.Start("c-a"), ErrFullscreen)
	assert.Equal(t, Idle, m.State())
}

func TestMachine_HoverMidpointRule(t *testing.T) {
	m := NewMachine(newFakeCommitter("c-a", "c-b"))
	require.NoError(t, m.Start("c-a"))

	m.HoverContainer("c-b", 10, 50)
	assert.Equal(t, HoveringBefore, m.State())

	m.HoverContainer("c-b", 90, 50)
	assert.Equal(t, HoveringAfter, m.State())

	// exactly on the midpoint counts as below
	m.HoverContainer("c-b", 50, 50)
	assert.Equal(t, HoveringAfter, m.State())
}

func TestMachine_HoverSelfClearsCandidate(t *testing.T) {
	m := NewMachine(newFakeCommitter("c-a", "c-b"))
	require.NoError(t, m.Start("c-a"))

	m.HoverContainer("c-b", 10, 50)
	m.HoverContainer("c-a", 10, 50)
	assert.Equal(t, Dragging, m.State())
}

func TestMachine_HoverIgnoredWhenIdle(t *testing.T) {
	m := NewMachine(newFakeCommitter("c-a", "c-b"))
	m.HoverContainer("c-b", 10, 50)
	assert.Equal(t, Idle, m.State())
	m.HoverColumn(1)
	assert.Equal(t, Idle, m.State())
}

func TestMachine_DropBefore(t *testing.T) {
	c := newFakeCommitter("c-a", "c-b", "c-c")
	m := NewMachine(c)
	require.NoError(t, m.Start("c-c"))
	m.HoverContainer("c-a", 10, 50)

	require.NoError(t, m.Drop())
	assert.Equal(t, []string{"c-c", "c-a", "c-b"}, c.committedOrder)
	assert.Equal(t, "c-c", c.committedMoved)
	assert.Equal(t, 0, c.committedColumn)
	assert.Equal(t, Idle, m.State())
}

func TestMachine_DropAfterCrossesColumn(t *testing.T) {
	c := newFakeCommitter("c-a", "c-b", "c-c")
	c.columns["c-b"] = 2
	m := NewMachine(c)
	require.NoError(t, m.Start("c-a"))
	m.HoverContainer("c-b", 90, 50)

	require.NoError(t, m.Drop())
	assert.Equal(t, []string{"c-b", "c-a", "c-c"}, c.committedOrder)
	// the dragged container adopts the target's column
	assert.Equal(t, 2, c.committedColumn)
}

func TestMachine_DropOnColumnTail(t *testing.T) {
	c := newFakeCommitter("c-a", "c-b")
	m := NewMachine(c)
	require.NoError(t, m.Start("c-a"))
	m.HoverColumn(1)

	require.NoError(t, m.Drop())
	assert.Equal(t, []string{"c-b", "c-a"}, c.committedOrder)
	assert.Equal(t, 1, c.committedColumn)
}

func TestMachine_DropWithoutCandidateIsNoOp(t *testing.T) {
	c := newFakeCommitter("c-a", "c-b")
	m := NewMachine(c)
	require.NoError(t, m.Start("c-a"))

	require.NoError(t, m.Drop())
	assert.False(t, c.committed)
	assert.Equal(t, Idle, m.State())
}

func TestMachine_LeaveKeepsGestureAlive(t *testing.T) {
	c := newFakeCommitter("c-a", "c-b")
	m := NewMachine(c)
	require.NoError(t, m.Start("c-a"))
	m.HoverContainer("c-b", 10, 50)

	m.Leave()
	assert.Equal(t, Dragging, m.State())

	require.NoError(t, m.Drop())
	assert.False(t, c.committed)
}

func TestMachine_Cancel(t *testing.T) {
	c := newFakeCommitter("c-a", "c-b")
	m := NewMachine(c)
	require.NoError(t, m.Start("c-a"))
	m.HoverContainer("c-b", 90, 50)

	m.Cancel()
	assert.Equal(t, Idle, m.State())
	assert.False(t, c.committed)

	// a new gesture can start after a cancel
	require.NoError(t, m.Start("c-b"))
}

func TestMachine_TargetRemovedMidGesture(t *testing.T) {
	c := newFakeCommitter("c-a", "c-b")
	m := NewMachine(c)
	require.NoError(t, m.Start("c-a"))
	m.HoverContainer("c-b", 10, 50)

	// target vanished before the drop
	delete(c.columns, "c-b")
	c.order = []string{"c-a"}

	require.NoError(t, m.Drop())
	assert.False(t, c.committed)
	assert.Equal(t, Idle, m.State())
}

func TestSpliced(t *testing.T) {
	order := []string{"a", "b", "c", "d"}

	got, ok := spliced(order, "d", "b", false)
	require.True(t, ok)
	assert.Equal(t, []string{"a", "d", "b", "c"}, got)

	got, ok = spliced(order, "a", "d", true)
	require.True(t, ok)
	assert.Equal(t, []string{"b", "c", "d", "a"}, got)

	_, ok = spliced(order, "a", "a", false)
	assert.False(t, ok)

	_, ok = spliced(order, "x", "b", false)
	assert.False(t, ok)

	_, ok = spliced(order, "a", "x", false)
	assert.False(t, ok)
}
