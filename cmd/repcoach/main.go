package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/ayusman/repcoach/internal/app"
	"github.com/ayusman/repcoach/internal/capture"
	"github.com/ayusman/repcoach/internal/config"
	"github.com/ayusman/repcoach/internal/metrics"
	"github.com/ayusman/repcoach/internal/plugin"
	"github.com/ayusman/repcoach/internal/pose/detect"
	"github.com/ayusman/repcoach/internal/profile"
	"github.com/ayusman/repcoach/internal/server"
	"github.com/ayusman/repcoach/internal/session"
	"github.com/ayusman/repcoach/internal/store"
	"github.com/ayusman/repcoach/internal/timeutil"
	"github.com/ayusman/repcoach/internal/tray"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	configPath := flag.String("config", "", "path to config file (defaults are used when empty)")
	migrateOnly := flag.Bool("migrate-only", false, "run database migrations and exit")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := cfg.NewLogger()
	log.WithField("version", Version).Info("RepCoach starting")

	if err := run(cfg, *migrateOnly, log); err != nil {
		log.WithError(err).Fatal("RepCoach failed")
	}
}

func run(cfg *config.Config, migrateOnly bool, log *logrus.Logger) error {
	st, err := store.New(cfg.Store.Path, log)
	if err != nil {
		return fmt.Errorf("initializing store: %w", err)
	}
	defer st.Close()

	if migrateOnly {
		log.Info("migrate-only: exiting")
		return nil
	}

	registry, err := loadRegistry(cfg, st, log)
	if err != nil {
		return err
	}

	promReg := metrics.SetupPrometheus()
	m := metrics.NewManager("repcoach", "engine", promReg)

	coach := session.NewCoach(registry, cfg.Engine.Options(), timeutil.RealClock{}, log)
	coach.AddObserver(m)

	hub := server.NewHub(log)
	coach.AddObserver(hub)
	defer hub.Close()

	if dispatcher := newDispatcher(cfg, log); dispatcher != nil {
		coach.AddObserver(dispatcher)
		defer dispatcher.Close()
	}

	var preview *capture.Preview
	if cfg.Camera.Enabled {
		preview = capture.NewPreview()
	}

	application := app.New(app.Config{
		Coach:           coach,
		Detector:        newDetector(cfg, log),
		CameraID:        cfg.Camera.Device,
		IdleFPS:         cfg.Camera.IdleFPS,
		ActiveFPS:       cfg.Camera.ActiveFPS,
		IdleTimeout:     cfg.Camera.IdleTimeout,
		MotionThreshold: cfg.Camera.MotionThreshold,
		Store:           st,
		Preview:         preview,
		Drops:           m,
		Log:             log,
	})
	defer application.Stop()

	if id, err := application.RestoreExercise(cfg.DefaultExercise); err != nil {
		log.WithError(err).Warn("Failed to restore exercise")
	} else if id != "" {
		log.WithField("exercise", id).Info("Exercise restored")
	}

	srvConfig := server.Config{
		Coach:     coach,
		Selector:  application,
		Preview:   preview,
		Feedback:  hub,
		Metrics:   promhttp.HandlerFor(promReg, promhttp.HandlerOpts{}),
		StaticDir: cfg.Server.StaticDir,
		Log:       log,
	}
	if srvConfig.StaticDir == "" {
		srvConfig.StaticDir = findWebDir()
	}

	if cfg.Camera.Enabled {
		srvConfig.Detection = application
		application.SetEnabled(true)
		if err := application.Start(); err != nil {
			log.WithError(err).Warn("Camera unavailable, accepting landmark frames over HTTP only")
		}
	}

	srv := server.New(srvConfig)
	srvErr := make(chan error, 1)
	go func() {
		srvErr <- srv.ListenAndServe(cfg.Server.Addr())
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	if cfg.Tray.Enabled {
		t := newTray(cfg, application, coach, log)
		coach.AddObserver(t)
		go func() {
			select {
			case sig := <-quit:
				log.WithField("signal", sig).Info("Shutting down")
			case err := <-srvErr:
				srvErr <- err
			}
			t.Quit()
		}()
		t.Run()
	} else {
		select {
		case sig := <-quit:
			log.WithField("signal", sig).Info("Shutting down")
		case err := <-srvErr:
			srvErr <- err
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.WithError(err).Error("Shutdown error")
	}

	select {
	case err := <-srvErr:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	default:
	}
	log.Info("RepCoach stopped")
	return nil
}

// loadRegistry seeds the catalog with the built-in exercises, imports any
// profiles file, and builds the registry from the stored catalog.
func loadRegistry(cfg *config.Config, st *store.Store, log logrus.FieldLogger) (*profile.Registry, error) {
	seeded, err := st.SeedProfiles(profile.Defaults())
	if err != nil {
		return nil, fmt.Errorf("seeding profiles: %w", err)
	}
	if seeded > 0 {
		log.WithField("count", seeded).Info("Seeded built-in exercises")
	}

	if cfg.ProfilesFile != "" {
		extra, err := profile.LoadFile(cfg.ProfilesFile)
		if err != nil {
			return nil, err
		}
		for _, p := range extra {
			if err := st.Profiles().Upsert(p); err != nil {
				return nil, fmt.Errorf("importing profile %s: %w", p.ID, err)
			}
		}
		log.WithFields(logrus.Fields{
			"file":  cfg.ProfilesFile,
			"count": len(extra),
		}).Info("Imported exercise profiles")
	}

	catalog, err := st.Catalog()
	if err != nil {
		return nil, fmt.Errorf("loading catalog: %w", err)
	}
	registry, err := profile.NewRegistry(catalog...)
	if err != nil {
		return nil, fmt.Errorf("building registry: %w", err)
	}
	log.WithField("count", registry.Len()).Info("Exercises loaded")
	return registry, nil
}

// newDispatcher discovers event plugins. It returns nil when plugins are
// disabled or none are installed.
func newDispatcher(cfg *config.Config, log logrus.FieldLogger) *plugin.Dispatcher {
	if cfg.Plugins.Dir == "" {
		return nil
	}
	manager := plugin.NewManager(cfg.Plugins.Dir)
	if err := manager.Discover(); err != nil {
		log.WithError(err).WithField("dir", cfg.Plugins.Dir).Warn("Plugin discovery failed")
		return nil
	}
	plugins := manager.List()
	if len(plugins) == 0 {
		return nil
	}
	for _, p := range plugins {
		log.WithFields(logrus.Fields{
			"plugin":  p.Manifest.Name,
			"version": p.Manifest.Version,
			"events":  p.Manifest.Events,
		}).Info("Plugin loaded")
	}
	return plugin.NewDispatcher(manager, plugin.NewExecutor(cfg.Plugins.Timeout), log)
}

// newDetector prefers the MediaPipe backend and falls back to a detector that
// never finds a body.
func newDetector(cfg *config.Config, log logrus.FieldLogger) detect.Detector {
	if !cfg.Camera.Enabled {
		return detect.NewMockDetector()
	}
	mp, err := detect.NewMediaPipeDetector(cfg.PoseConfig(), log)
	if err != nil {
		log.WithError(err).Warn("MediaPipe not available, camera frames will not be analyzed")
		return detect.NewMockDetector()
	}
	log.Info("Using MediaPipe pose detection")
	return mp
}

func newTray(cfg *config.Config, application *app.App, coach *session.Coach, log logrus.FieldLogger) *tray.Tray {
	t := tray.New(coach.Profiles(), application.IsEnabled())
	if p, ok := coach.Exercise(); ok {
		t.SetStatus(p.ID, coach.CurrentCount())
	}

	if cfg.Camera.Enabled {
		t.OnToggle(application.SetEnabled)
	}
	t.OnSelect(func(id string) {
		snap, err := application.SelectExercise(id)
		if err != nil {
			log.WithError(err).WithField("exercise", id).Warn("Exercise selection failed")
			return
		}
		t.SetStatus(snap.Exercise, snap.Count)
	})
	t.OnReset(func() {
		snap, err := coach.Reset()
		if err != nil {
			return
		}
		t.SetStatus(snap.Exercise, snap.Count)
	})
	t.OnOpen(func() {
		url := "http://" + cfg.Server.Addr()
		if err := tray.OpenBrowser(url); err != nil {
			log.WithError(err).Warn("Failed to open browser")
		}
	})
	return t
}

// findWebDir searches for the web directory in common locations.
// It checks: "web", "../web", "../../web", and ~/.repcoach/web.
func findWebDir() string {
	for _, p := range []string{"web", "../web", "../../web"} {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			if abs, err := filepath.Abs(p); err == nil {
				return abs
			}
			return p
		}
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	dir := filepath.Join(home, ".repcoach", "web")
	if info, err := os.Stat(dir); err == nil && info.IsDir() {
		return dir
	}
	return ""
}
