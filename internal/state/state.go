// Package state persists the player's preferences and playlist in
// a sqlite database.
package state

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/llehouerou/tazaudio/internal/broadcast"
	"github.com/llehouerou/tazaudio/internal/playback"
)

const (
	appName    = "tazaudio"
	dbFileName = "tazaudio.db"
)

type Manager struct {
	db    *sql.DB
	log   logrus.FieldLogger
	speed *broadcast.Value[float64]
	auto  *broadcast.Value[bool]
}

// Open opens the database at path, or at the default location if path is
// empty, and loads the stored preferences.
func Open(ctx context.Context, path string, log logrus.FieldLogger) (*Manager, error) {
	return OpenWithDefaults(ctx, path, DefaultPreferences, log)
}

// OpenWithDefaults is Open with the preferences used until the user
// changes a setting.
func OpenWithDefaults(ctx context.Context, path string, defaults Preferences, log logrus.FieldLogger) (*Manager, error) {
	if playback.ValidatePlaybackSpeed(defaults.PlaybackSpeed) != nil {
		defaults.PlaybackSpeed = DefaultPreferences.PlaybackSpeed
	}
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}
	if path != ":memory:" {
		// Ensure directory exists
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, err
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// Writes are serialized anyway, and :memory: databases live per connection.
	db.SetMaxOpenConns(1)

	if err := initSchema(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	prefs, err := getPreferences(ctx, db, defaults)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("load preferences: %w", err)
	}

	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Manager{
		db:    db,
		log:   log.WithField("component", "state"),
		speed: broadcast.NewValue(prefs.PlaybackSpeed),
		auto:  broadcast.NewValue(prefs.AutoPlayNext),
	}, nil
}

func (m *Manager) Close() error {
	m.speed.Close()
	m.auto.Close()
	return m.db.Close()
}

func (m *Manager) DB() *sql.DB {
	return m.db
}

// DefaultPath returns the database location under the XDG data directory.
func DefaultPath() (string, error) {
	return xdg.DataFile(filepath.Join(appName, dbFileName))
}

// Verify Manager implements the playback collaborators at compile time.
var (
	_ playback.Preferences   = (*Manager)(nil)
	_ playback.PlaylistStore = (*Manager)(nil)
)
