package state

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/llehouerou/tazaudio/internal/broadcast"
	"github.com/llehouerou/tazaudio/internal/playback"
)

// Preferences are the stored player settings.
type Preferences struct {
	PlaybackSpeed float64
	AutoPlayNext  bool
}

// DefaultPreferences are used until the user changes a setting.
var DefaultPreferences = Preferences{PlaybackSpeed: 1, AutoPlayNext: false}

// getPreferences reads the stored preferences, falling back to defaults
// when nothing was stored yet.
func getPreferences(ctx context.Context, db *sql.DB, defaults Preferences) (Preferences, error) {
	var p Preferences
	row := db.QueryRowContext(ctx, `SELECT playback_speed, auto_play_next FROM preferences WHERE id = 1`)
	err := row.Scan(&p.PlaybackSpeed, &p.AutoPlayNext)
	if errors.Is(err, sql.ErrNoRows) {
		return defaults, nil
	}
	if err != nil {
		return Preferences{}, err
	}
	if playback.ValidatePlaybackSpeed(p.PlaybackSpeed) != nil {
		p.PlaybackSpeed = defaults.PlaybackSpeed
	}
	return p, nil
}

func (m *Manager) PlaybackSpeed() float64 { return m.speed.Load() }

func (m *Manager) AutoPlayNext() bool { return m.auto.Load() }

// SetPlaybackSpeed stores speed and notifies subscribers.
func (m *Manager) SetPlaybackSpeed(ctx context.Context, speed float64) error {
	if err := playback.ValidatePlaybackSpeed(speed); err != nil {
		return err
	}
	_, err := m.db.ExecContext(ctx, `
		INSERT INTO preferences (id, playback_speed, auto_play_next) VALUES (1, ?, ?)
		ON CONFLICT(id) DO UPDATE SET playback_speed = excluded.playback_speed
	`, speed, m.auto.Load())
	if err != nil {
		return fmt.Errorf("save playback speed: %w", err)
	}
	if m.speed.Load() != speed {
		m.speed.Store(speed)
	}
	return nil
}

// SetAutoPlayNext stores enabled and notifies subscribers.
func (m *Manager) SetAutoPlayNext(ctx context.Context, enabled bool) error {
	_, err := m.db.ExecContext(ctx, `
		INSERT INTO preferences (id, playback_speed, auto_play_next) VALUES (1, ?, ?)
		ON CONFLICT(id) DO UPDATE SET auto_play_next = excluded.auto_play_next
	`, m.speed.Load(), enabled)
	if err != nil {
		return fmt.Errorf("save auto play next: %w", err)
	}
	if m.auto.Load() != enabled {
		m.auto.Store(enabled)
	}
	return nil
}

func (m *Manager) SubscribePlaybackSpeed() *broadcast.Subscription[float64] {
	return m.speed.Subscribe()
}

func (m *Manager) SubscribeAutoPlayNext() *broadcast.Subscription[bool] {
	return m.auto.Subscribe()
}
