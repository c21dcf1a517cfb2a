package daw

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"supersaw"
)

func newTestManager() (*Manager, *fakeClock) {
	clock := &fakeClock{t: time.Unix(1000, 0)}
	m := NewManager(NewState("test"))
	m.now = clock.now
	return m, clock
}

func TestExecuteAndUndo(t *testing.T) {
	m, clock := newTestManager()
	require.NoError(t, m.Execute(AddTrack{ID: "t1", Name: "Lead"}))
	clock.advance(time.Second)
	require.NoError(t, m.Execute(RenameTrack{TrackID: "t1", Name: "Bass"}))

	assert.Equal(t, 2, m.UndoDepth())
	assert.Equal(t, "RenameTrack", m.UndoName())

	require.True(t, m.Undo())
	track, ok := m.State().Project.Track("t1")
	require.True(t, ok)
	assert.Equal(t, "Lead", track.Name)

	require.True(t, m.Undo())
	assert.Empty(t, m.State().Project.Tracks)
	assert.False(t, m.Undo())
}

func TestRedo(t *testing.T) {
	m, _ := newTestManager()
	require.NoError(t, m.Execute(AddTrack{ID: "t1", Name: "Lead"}))
	require.True(t, m.Undo())
	require.True(t, m.Redo())
	_, ok := m.State().Project.Track("t1")
	assert.True(t, ok)
	require.True(t, m.Undo())
	assert.Empty(t, m.State().Project.Tracks)
	assert.False(t, m.Redo() && m.Redo())
}

func TestExecuteClearsRedo(t *testing.T) {
	m, clock := newTestManager()
	require.NoError(t, m.Execute(AddTrack{ID: "t1"}))
	require.True(t, m.Undo())
	clock.advance(time.Second)
	require.NoError(t, m.Execute(AddTrack{ID: "t2"}))
	assert.False(t, m.CanRedo())
}

func TestRapidCommandsShareOneSnapshot(t *testing.T) {
	m, clock := newTestManager()
	require.NoError(t, m.Execute(AddTrack{ID: "t1", Name: "a"}))
	clock.advance(10 * time.Millisecond)
	require.NoError(t, m.Execute(RenameTrack{TrackID: "t1", Name: "b"}))
	clock.advance(10 * time.Millisecond)
	require.NoError(t, m.Execute(RenameTrack{TrackID: "t1", Name: "c"}))

	// three commands inside one snapshot window cost one undo step
	assert.Equal(t, 1, m.UndoDepth())
	require.True(t, m.Undo())
	assert.Empty(t, m.State().Project.Tracks)
	assert.Equal(t, 0, m.UndoDepth())
}

func TestCommandsAfterWindowGetOwnSnapshots(t *testing.T) {
	m, clock := newTestManager()
	require.NoError(t, m.Execute(AddTrack{ID: "t1", Name: "a"}))
	clock.advance(snapshotInterval)
	require.NoError(t, m.Execute(RenameTrack{TrackID: "t1", Name: "b"}))
	assert.Equal(t, 2, m.UndoDepth())
}

func TestUndoStackCapped(t *testing.T) {
	m, clock := newTestManager()
	for i := 0; i < maxUndo+20; i++ {
		require.NoError(t, m.Execute(AddTrack{Name: "t"}))
		clock.advance(time.Second)
	}
	assert.Equal(t, maxUndo, m.UndoDepth())
	for m.Undo() {
	}
	// the oldest snapshots were evicted, so some tracks survive every undo
	assert.Len(t, m.State().Project.Tracks, 20)
}

func TestNonMutatingCommandsSkipSnapshots(t *testing.T) {
	m, _ := newTestManager()
	require.NoError(t, m.Execute(Play{}))
	require.NoError(t, m.Execute(Seek{Position: 3}))
	require.NoError(t, m.Execute(SetSnapMode{Mode: supersaw.SnapEighth}))
	require.NoError(t, m.Execute(NoOp{}))
	assert.Equal(t, 0, m.UndoDepth())
	assert.Equal(t, supersaw.SnapEighth, m.State().SnapMode)
}

func TestUndoAfterUndoForcesFreshSnapshot(t *testing.T) {
	m, _ := newTestManager()
	require.NoError(t, m.Execute(AddTrack{ID: "t1", Name: "a"}))
	require.True(t, m.Undo())
	// still inside the snapshot window, but the next mutation must not
	// coalesce into a snapshot that was popped
	require.NoError(t, m.Execute(AddTrack{ID: "t2", Name: "b"}))
	assert.Equal(t, 1, m.UndoDepth())
	require.True(t, m.Undo())
	assert.Empty(t, m.State().Project.Tracks)
}

func TestUndoKeepsLiveServices(t *testing.T) {
	m, _ := newTestManager()
	transport := m.State().Transport
	require.NoError(t, m.Execute(AddTrack{ID: "t1"}))
	require.True(t, m.Undo())
	assert.Same(t, transport, m.State().Transport)
}
