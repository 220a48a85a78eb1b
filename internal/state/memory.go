package state

import (
	"context"
	"slices"
	"sync"

	"github.com/llehouerou/tazaudio/internal/playback"
	"github.com/llehouerou/tazaudio/internal/resolve"
)

// Memory keeps the player state in memory only. It stands in for the
// database when that cannot be opened; nothing survives a restart.
type Memory struct {
	*playback.MemoryPreferences

	mu      sync.Mutex
	reqs    []resolve.Request
	current int
}

// NewMemory creates an empty in-memory state starting from defaults.
func NewMemory(defaults Preferences) *Memory {
	return &Memory{
		MemoryPreferences: playback.NewMemoryPreferences(defaults.PlaybackSpeed, defaults.AutoPlayNext),
		current: -1,
	}
}

func (m *Memory) SavePlaylist(_ context.Context, reqs []resolve.Request, current int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reqs = slices.Clone(reqs)
	m.current = current
	return nil
}

func (m *Memory) LoadPlaylist(_ context.Context) ([]resolve.Request, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.reqs), m.current, nil
}

func (m *Memory) Close() error {
	return nil
}

var _ Interface = (*Memory)(nil)
