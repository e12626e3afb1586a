package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"gorm.io/gorm"

	"github.com/andrescamacho/bob-go/internal/adapters/host"
	"github.com/andrescamacho/bob-go/internal/adapters/logging"
	"github.com/andrescamacho/bob-go/internal/adapters/metrics"
	"github.com/andrescamacho/bob-go/internal/adapters/persistence"
	"github.com/andrescamacho/bob-go/internal/adapters/xmlconfig"
	"github.com/andrescamacho/bob-go/internal/application/common"
	"github.com/andrescamacho/bob-go/internal/application/engine"
	"github.com/andrescamacho/bob-go/internal/application/replacement"
	"github.com/andrescamacho/bob-go/internal/domain/configuration"
	"github.com/andrescamacho/bob-go/internal/infrastructure/config"
	"github.com/andrescamacho/bob-go/internal/infrastructure/database"
	"github.com/andrescamacho/bob-go/internal/infrastructure/lockfile"
	"github.com/andrescamacho/bob-go/pkg/utils"
)

// session is one CLI invocation: the scene, an engine with the stored
// profile applied and the mediator dispatching to it
type session struct {
	ctx      context.Context
	cfg      *config.Config
	host     *host.MemoryHost
	engine   *engine.Engine
	mediator common.Mediator
	repo     configuration.Repository
	db       *gorm.DB
	logFile  io.Closer
	lock     *lockfile.Lock
	imported *engine.ImportResult
}

// loadConfig loads bob.yaml and applies the global flag overrides
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}
	if profile != "" {
		cfg.Engine.Profile = profile
	}
	if scenePath != "" {
		cfg.Engine.ScenePath = scenePath
	}
	if storage != "" {
		cfg.Engine.Storage = storage
	}
	if liveApplied {
		cfg.Engine.LiveApplied = true
	}
	if verbose {
		cfg.Logging.Level = "debug"
	}
	if dumpMetrics {
		cfg.Metrics.Enabled = true
		cfg.Metrics.Dump = true
	}
	if err := config.ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// openSession builds the engine for the configured scene and, with load
// set, applies the stored profile. A missing profile starts from an empty
// document. Writers hold the profile lock until close.
func openSession(ctx context.Context, load, write bool) (*session, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	s := &session{cfg: cfg}
	if write {
		s.lock = lockfile.New(cfg.Engine.LockFile)
		if err := s.lock.Acquire(); err != nil {
			return nil, err
		}
	}

	if cfg.NeedsDatabase() {
		db, err := database.NewConnection(&cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		if err := database.AutoMigrate(db); err != nil {
			database.Close(db)
			return nil, fmt.Errorf("failed to migrate database: %w", err)
		}
		s.db = db
	}

	logger, err := s.buildLogger()
	if err != nil {
		s.close()
		return nil, err
	}
	s.ctx = common.WithLogger(ctx, logger)

	scene, err := host.LoadScene(cfg.Engine.ScenePath)
	if err != nil {
		s.close()
		return nil, err
	}
	if s.host, err = host.NewMemoryHostFromScene(scene); err != nil {
		s.close()
		return nil, err
	}

	var opts []engine.Option
	s.mediator = common.NewMediator()
	s.mediator.Use(common.LoggingMiddleware)
	if cfg.Metrics.Enabled {
		metrics.InitRegistry()
		engineMetrics := metrics.NewEngineMetricsCollector()
		commandMetrics := metrics.NewCommandMetricsCollector()
		if err := engineMetrics.Register(); err != nil {
			s.close()
			return nil, fmt.Errorf("failed to register engine metrics: %w", err)
		}
		if err := commandMetrics.Register(); err != nil {
			s.close()
			return nil, fmt.Errorf("failed to register command metrics: %w", err)
		}
		opts = append(opts, engine.WithMetrics(engineMetrics))
		s.mediator.Use(metrics.PrometheusMiddleware(commandMetrics))
	}
	s.engine = engine.New(s.host, opts...)

	if err := replacement.RegisterHandlers(s.mediator, s.engine); err != nil {
		s.close()
		return nil, err
	}

	switch cfg.Engine.Storage {
	case config.StorageDatabase:
		s.repo = persistence.NewGormConfigurationRepository(s.db, nil)
	default:
		s.repo = xmlconfig.NewFileRepository(cfg.Engine.DocumentDir)
	}

	if !load {
		return s, nil
	}
	doc, err := s.repo.Load(s.ctx, cfg.Engine.Profile)
	if errors.Is(err, configuration.ErrProfileNotFound) {
		logger.Log(common.LevelInfo, "Starting new configuration profile", map[string]interface{}{"profile": cfg.Engine.Profile})
		return s, nil
	}
	if err != nil {
		s.close()
		return nil, fmt.Errorf("failed to load profile %s: %w", cfg.Engine.Profile, err)
	}
	if err := s.apply(doc); err != nil {
		s.close()
		return nil, err
	}
	return s, nil
}

// buildLogger creates the console logger and, when enabled, the database sink
func (s *session) buildLogger() (common.Logger, error) {
	session := utils.GenerateRecordID("session")

	var out io.Writer = os.Stderr
	switch s.cfg.Logging.Output {
	case "stdout":
		out = os.Stdout
	case "file":
		f, err := os.OpenFile(s.cfg.Logging.FilePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		s.logFile = f
		out = f
	}
	console := logging.NewConsoleLogger(out, session, s.cfg.Logging.Level, s.cfg.Logging.Format, nil)

	if !s.cfg.Logging.Persist || s.db == nil {
		return console, nil
	}
	sink := persistence.NewGormEngineLogRepository(s.db, session, nil)
	return logging.NewMultiLogger(console, logging.NewLevelFilter(sink, common.LevelInfo)), nil
}

// apply imports doc into the engine
func (s *session) apply(doc *configuration.Document) error {
	result, err := s.engine.Import(s.ctx, doc, engine.ImportOptions{LiveApplied: s.cfg.Engine.LiveApplied})
	if err != nil {
		return fmt.Errorf("failed to import configuration: %w", err)
	}
	s.imported = result
	return nil
}

// send dispatches a command or query through the mediator
func (s *session) send(request common.Request) (common.Response, error) {
	return s.mediator.Send(s.ctx, request)
}

// commit exports the engine state and stores it under the active profile
func (s *session) commit() error {
	if err := s.repo.Save(s.ctx, s.cfg.Engine.Profile, s.engine.Export()); err != nil {
		return fmt.Errorf("failed to save profile %s: %w", s.cfg.Engine.Profile, err)
	}
	return nil
}

// close releases what the session holds and dumps metrics when asked
func (s *session) close() {
	if s.cfg != nil && s.cfg.Metrics.Dump {
		if err := metrics.WriteText(os.Stderr); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to write metrics: %v\n", err)
		}
	}
	if s.db != nil {
		database.Close(s.db)
	}
	if s.logFile != nil {
		s.logFile.Close()
	}
	if s.lock != nil {
		if err := s.lock.Release(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
		}
	}
}

// withSession opens a session on the stored profile, runs fn and stores the
// document when commit is set and fn succeeded
func withSession(ctx context.Context, commit bool, fn func(s *session) error) error {
	return runSession(ctx, true, commit, fn)
}

func runSession(ctx context.Context, load, commit bool, fn func(s *session) error) error {
	s, err := openSession(ctx, load, commit)
	if err != nil {
		return err
	}
	defer s.close()

	if err := fn(s); err != nil {
		return err
	}
	if commit {
		return s.commit()
	}
	return nil
}
