package window

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeKdotool struct {
	outputs map[string]string
	calls   []string
}

func (f *fakeKdotool) run(name string, args ...string) ([]byte, error) {
	key := strings.Join(append([]string{name}, args...), " ")
	f.calls = append(f.calls, key)
	if out, ok := f.outputs[key]; ok {
		return []byte(out), nil
	}
	if strings.Contains(key, "getwindowname") {
		return nil, errors.New("window not found")
	}
	return nil, nil
}

func TestKWinListAndActivate(t *testing.T) {
	fake := &fakeKdotool{outputs: map[string]string{
		"kdotool search --name .":     "{aaa}\n{bbb}\n{ccc}\n",
		"kdotool getwindowname {aaa}": "EVE - Alpha\n",
		"kdotool getwindowname {bbb}": "\n",
		"kdotool getactivewindow":     "{aaa}\n",
	}}
	b := newKWinBackend(nil, fake.run)

	windows, err := b.ListWindows()
	require.NoError(t, err)
	require.Len(t, windows, 1)
	assert.Equal(t, "EVE - Alpha", windows[0].Title)
	assert.Equal(t, hashWindowUUID("{aaa}"), windows[0].ID)

	active, err := b.ActiveWindow()
	require.NoError(t, err)
	assert.Equal(t, windows[0].ID, active)

	require.NoError(t, b.Activate(active))
	assert.Contains(t, fake.calls, "kdotool windowactivate {aaa}")

	require.NoError(t, b.MoveResize(active, Rect{X: 1, Y: 2, Width: 3, Height: 4}))
	assert.Contains(t, fake.calls, "kdotool windowmove {aaa} 1 2")
	assert.Contains(t, fake.calls, "kdotool windowsize {aaa} 3 4")
}

func TestKWinActivateUnknownID(t *testing.T) {
	b := newKWinBackend(nil, (&fakeKdotool{}).run)

	var ae *ActivationError
	assert.ErrorAs(t, b.Activate(42), &ae)
}

func TestHashWindowUUIDStable(t *testing.T) {
	assert.Equal(t, hashWindowUUID("{abc}"), hashWindowUUID("{abc}"))
	assert.NotEqual(t, hashWindowUUID("{abc}"), hashWindowUUID("{abd}"))
}
