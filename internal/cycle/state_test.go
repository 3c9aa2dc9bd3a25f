package cycle

import (
	"errors"
	"testing"

	"github.com/isomerc/nicotine/internal/window"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingActivator struct {
	activated []window.ID
	err       error
}

func (r *recordingActivator) Activate(id window.ID) error {
	r.activated = append(r.activated, id)
	return r.err
}

func threeWindows() []window.Window {
	return []window.Window{
		{ID: 1, Title: "Alpha"},
		{ID: 2, Title: "Bravo"},
		{ID: 3, Title: "Charlie"},
	}
}

func TestCycleForwardScenario(t *testing.T) {
	s := NewState()
	s.UpdateWindows(threeWindows())
	a := &recordingActivator{}

	require.NoError(t, s.CycleForward(a))
	assert.Equal(t, 1, s.CurrentIndex())
	require.NoError(t, s.CycleForward(a))
	assert.Equal(t, 2, s.CurrentIndex())
	require.NoError(t, s.CycleForward(a))
	assert.Equal(t, 0, s.CurrentIndex())

	assert.Equal(t, []window.ID{2, 3, 1}, a.activated)
}

func TestCycleForwardFullRotation(t *testing.T) {
	for n := 1; n <= 7; n++ {
		windows := make([]window.Window, n)
		for i := range windows {
			windows[i] = window.Window{ID: window.ID(i + 1)}
		}

		for start := 0; start < n; start++ {
			s := NewState()
			s.UpdateWindows(windows)
			s.current = start
			a := &recordingActivator{}

			seen := make(map[int]bool)
			for i := 0; i < n; i++ {
				require.NoError(t, s.CycleForward(a))
				seen[s.CurrentIndex()] = true
			}
			assert.Equal(t, start, s.CurrentIndex(), "n=%d start=%d", n, start)
			assert.Len(t, seen, n)
		}
	}
}

func TestCycleForwardThenBackwardRestores(t *testing.T) {
	for start := 0; start < 3; start++ {
		s := NewState()
		s.UpdateWindows(threeWindows())
		s.current = start
		a := &recordingActivator{}

		require.NoError(t, s.CycleForward(a))
		require.NoError(t, s.CycleBackward(a))
		assert.Equal(t, start, s.CurrentIndex())
	}
}

func TestCycleBackwardWraps(t *testing.T) {
	s := NewState()
	s.UpdateWindows(threeWindows())
	a := &recordingActivator{}

	require.NoError(t, s.CycleBackward(a))
	assert.Equal(t, 2, s.CurrentIndex())
	assert.Equal(t, []window.ID{3}, a.activated)
}

func TestEmptyStateIsNoOp(t *testing.T) {
	s := NewState()
	s.UpdateWindows(threeWindows())
	s.current = 2
	s.UpdateWindows(nil)

	assert.True(t, s.Empty())
	assert.Equal(t, 0, s.CurrentIndex())

	a := &recordingActivator{}
	assert.NoError(t, s.CycleForward(a))
	assert.NoError(t, s.CycleBackward(a))
	assert.Empty(t, a.activated)

	_, ok := s.Current()
	assert.False(t, ok)
}

func TestUpdateWindowsPreservesPointedWindow(t *testing.T) {
	s := NewState()
	s.UpdateWindows(threeWindows())
	s.current = 1 // Bravo

	s.UpdateWindows([]window.Window{
		{ID: 4, Title: "Delta"},
		{ID: 3, Title: "Charlie"},
		{ID: 1, Title: "Alpha"},
		{ID: 2, Title: "Bravo"},
	})
	cur, ok := s.Current()
	require.True(t, ok)
	assert.Equal(t, window.ID(2), cur.ID)
	assert.Equal(t, 3, s.CurrentIndex())
}

func TestUpdateWindowsClampsWhenPointedWindowCloses(t *testing.T) {
	s := NewState()
	s.UpdateWindows(threeWindows())
	s.current = 2 // Charlie

	s.UpdateWindows([]window.Window{{ID: 1}, {ID: 2}})
	assert.Equal(t, 1, s.CurrentIndex())

	s.current = 0
	s.UpdateWindows([]window.Window{{ID: 5}, {ID: 6}})
	assert.Equal(t, 0, s.CurrentIndex())
}

func TestSyncWithActive(t *testing.T) {
	s := NewState()
	s.UpdateWindows(threeWindows())

	assert.True(t, s.SyncWithActive(3))
	assert.Equal(t, 2, s.CurrentIndex())
	id, ok := s.LastKnownActive()
	assert.True(t, ok)
	assert.Equal(t, window.ID(3), id)

	assert.False(t, s.SyncWithActive(99))
	assert.Equal(t, 2, s.CurrentIndex())
}

func TestSyncThenForwardAfterManualFocusChange(t *testing.T) {
	s := NewState()
	s.UpdateWindows([]window.Window{{ID: 10, Title: "A"}, {ID: 20, Title: "B"}})
	s.current = 1
	a := &recordingActivator{}

	s.SyncWithActive(10)
	assert.Equal(t, 0, s.CurrentIndex())

	require.NoError(t, s.CycleForward(a))
	assert.Equal(t, []window.ID{20}, a.activated)
}

func TestActivationFailureKeepsIndex(t *testing.T) {
	s := NewState()
	s.UpdateWindows(threeWindows())
	a := &recordingActivator{err: errors.New("stale window")}

	assert.Error(t, s.CycleForward(a))
	assert.Equal(t, 1, s.CurrentIndex())
}

func TestSwitchToByIndex(t *testing.T) {
	s := NewState()
	s.UpdateWindows(threeWindows())
	a := &recordingActivator{}

	require.NoError(t, s.SwitchTo(3, a, nil))
	assert.Equal(t, 2, s.CurrentIndex())
	assert.Equal(t, []window.ID{3}, a.activated)
}

func TestSwitchToOutOfRange(t *testing.T) {
	for _, n := range []int{0, 4, 100, -1} {
		s := NewState()
		s.UpdateWindows(threeWindows())
		s.current = 1
		a := &recordingActivator{}

		err := s.SwitchTo(n, a, nil)
		assert.ErrorIs(t, err, ErrOutOfRange, "n=%d", n)
		assert.Equal(t, 1, s.CurrentIndex())
		assert.Empty(t, a.activated)
	}
}

func TestSwitchToEmpty(t *testing.T) {
	s := NewState()
	assert.ErrorIs(t, s.SwitchTo(1, &recordingActivator{}, nil), ErrOutOfRange)
}

func TestSwitchToByCharacterOrder(t *testing.T) {
	s := NewState()
	s.UpdateWindows(threeWindows())
	a := &recordingActivator{}
	order := []string{"Charlie", "Alpha", "Zulu"}

	require.NoError(t, s.SwitchTo(1, a, order))
	assert.Equal(t, 2, s.CurrentIndex())

	require.NoError(t, s.SwitchTo(2, a, order))
	assert.Equal(t, 0, s.CurrentIndex())

	// Zulu is configured but not running
	assert.ErrorIs(t, s.SwitchTo(3, a, order), ErrOutOfRange)
	assert.Equal(t, 0, s.CurrentIndex())

	assert.ErrorIs(t, s.SwitchTo(4, a, order), ErrOutOfRange)
	assert.Equal(t, []window.ID{3, 1}, a.activated)
}

func TestActivateID(t *testing.T) {
	s := NewState()
	s.UpdateWindows(threeWindows())
	a := &recordingActivator{}

	require.NoError(t, s.ActivateID(2, a))
	assert.Equal(t, 1, s.CurrentIndex())

	assert.ErrorIs(t, s.ActivateID(9, a), ErrOutOfRange)
	assert.Equal(t, 1, s.CurrentIndex())
	assert.Equal(t, []window.ID{2}, a.activated)
}
