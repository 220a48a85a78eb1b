package playback

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/llehouerou/tazaudio/internal/item"
	"github.com/llehouerou/tazaudio/internal/transport"
)

// allStates returns one value of every state variant. A new variant must be
// added here, which makes the helpers below fail until they handle it.
func allStates(t *testing.T) []State {
	session := transport.NewMockSession()
	a := articleItem(t, "a1.html")
	return []State{
		Init{},
		AudioQueued{Item: a},
		ControllerReady{Session: session},
		ControllerError{Cause: errors.New("boom")},
		AudioPrepare{Session: session, Item: a},
		AudioReady{Session: session, Item: a},
		AudioPlaying{Session: session, Item: a},
		AudioError{Session: session, Item: a, Err: &PlayerError{Kind: ErrorGeneric}},
	}
}

func TestStateHelpers(t *testing.T) {
	tests := []struct {
		state       string
		wantSession bool
		wantItem    bool
	}{
		{"Init", false, false},
		{"AudioQueued", false, true},
		{"ControllerReady", true, false},
		{"ControllerError", false, false},
		{"AudioPrepare", true, true},
		{"AudioReady", true, true},
		{"AudioPlaying", true, true},
		{"AudioError", true, true},
	}

	states := allStates(t)
	if len(states) != len(tests) {
		t.Fatalf("allStates() has %d variants, table has %d", len(states), len(tests))
	}
	other := articleItem(t, "a2.html")

	for i, tt := range tests {
		s := states[i]
		t.Run(tt.state, func(t *testing.T) {
			assert.Equal(t, tt.state, describe(s)[:len(tt.state)])
			assert.Equal(t, tt.wantSession, SessionOf(s) != nil)
			assert.Equal(t, tt.wantSession, HasSession(s))
			assert.Equal(t, tt.wantItem, ItemOf(s) != nil)

			replaced := WithItem(s, other)
			assert.IsType(t, s, replaced)
			if tt.wantItem {
				assert.True(t, item.Equal(other, ItemOf(replaced)))
			} else {
				assert.Nil(t, ItemOf(replaced))
			}
			assert.NotEmpty(t, s.String())
		})
	}
}

func TestIsPreparing(t *testing.T) {
	for _, s := range allStates(t) {
		_, prepare := s.(AudioPrepare)
		_, queued := s.(AudioQueued)
		assert.Equal(t, prepare || queued, isPreparing(s), s.String())
	}
}
