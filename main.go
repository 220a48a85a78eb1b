package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"

	"github.com/llehouerou/tazaudio/internal/app"
	"github.com/llehouerou/tazaudio/internal/catalog"
	"github.com/llehouerou/tazaudio/internal/config"
	"github.com/llehouerou/tazaudio/internal/engine"
	"github.com/llehouerou/tazaudio/internal/errmsg"
	"github.com/llehouerou/tazaudio/internal/logging"
	"github.com/llehouerou/tazaudio/internal/mpris"
	"github.com/llehouerou/tazaudio/internal/playback"
	"github.com/llehouerou/tazaudio/internal/resolve"
	"github.com/llehouerou/tazaudio/internal/state"
	"github.com/llehouerou/tazaudio/internal/stderr"
	"github.com/llehouerou/tazaudio/internal/uistate"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, logFile, err := logging.Setup(cfg.GetLogConfig())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: logging disabled: %v\n", err)
		log, logFile = logging.Discard(), io.NopCloser(nil)
	}
	defer logFile.Close()

	// Capture C library stderr before the audio backend starts.
	capture, err := stderr.Start(log)
	if err != nil {
		log.WithError(err).Warn("could not capture stderr")
	}
	defer capture.Stop()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if !cfg.HasCatalog() {
		return errors.New("no catalog configured: set [catalog] path in ~/.config/tazaudio/config.toml")
	}
	cat, err := catalog.Load(cfg.Catalog.Path, log)
	if err != nil {
		return errors.New(errmsg.FormatWith(errmsg.OpCatalogLoad, cfg.Catalog.Path, err))
	}

	pc := cfg.GetPlayerConfig()
	store := openState(ctx, cfg, pc, log)
	defer store.Close()

	tracker := playback.LogTracker{Log: log}
	machine, err := playback.New(playback.Config{
		ProgressInterval: pc.ProgressInterval,
		SeekStep:         pc.SeekStep,
		BreakMargin:      pc.BreakMargin,
		ConnectTimeout:   pc.ConnectTimeout,
	}, playback.Deps{
		Connector:     engine.New(engine.Options{HTTPTimeout: pc.DownloadTimeout}, log),
		Resolver:      resolve.New(cat, log),
		Preferences:   store,
		PlaylistStore: store,
		Tracker:       tracker,
		Logger:        log,
	})
	if err != nil {
		return errors.New(errmsg.Format(errmsg.OpInitialize, err))
	}
	projector := uistate.NewProjector(machine, store, tracker, log)

	runCtx, stop := context.WithCancel(ctx)
	var wg sync.WaitGroup
	wg.Go(func() {
		if err := machine.Run(runCtx); err != nil {
			log.WithError(err).Error("player stopped")
		}
	})
	wg.Go(func() {
		if err := projector.Run(runCtx); err != nil {
			log.WithError(err).Error("ui state projector stopped")
		}
	})
	defer func() {
		stop()
		wg.Wait()
	}()

	if cfg.MPRISEnabled() {
		adapter, err := mpris.New(machine, projector, log)
		if err != nil {
			log.WithError(err).Warn(errmsg.Format(errmsg.OpMPRISStart, err))
		} else {
			defer adapter.Close()
		}
	}

	model := app.New(machine, projector, cat.Issues(), log)
	defer model.Close()

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		capture.WriteOriginal(fmt.Sprintf("Error running program: %v\n", err))
		return err
	}
	return nil
}

// openState opens the preference database. Without it the player still
// works, with preferences and the playlist kept in memory.
func openState(ctx context.Context, cfg *config.Config, pc config.PlayerConfig, log logrus.FieldLogger) state.Interface {
	defaults := state.Preferences{
		PlaybackSpeed: pc.DefaultPlaybackSpeed,
		AutoPlayNext:  state.DefaultPreferences.AutoPlayNext,
	}
	mgr, err := state.OpenWithDefaults(ctx, cfg.State.DBPath, defaults, log)
	if err != nil {
		log.WithError(err).Error("could not open state database, keeping state in memory")
		return state.NewMemory(defaults)
	}
	return mgr
}
