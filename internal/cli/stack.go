// Package cli assembles the adapters selected by the configuration into the
// collaborators used by the fsmgen commands.
package cli

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/aretw0/fsmgen/internal/config"
	"github.com/aretw0/fsmgen/internal/logging"
	"github.com/aretw0/fsmgen/internal/metrics"
	"github.com/aretw0/fsmgen/pkg/adapters/badger"
	"github.com/aretw0/fsmgen/pkg/adapters/memory"
	"github.com/aretw0/fsmgen/pkg/adapters/openai"
	"github.com/aretw0/fsmgen/pkg/adapters/process"
	"github.com/aretw0/fsmgen/pkg/adapters/redis"
	"github.com/aretw0/fsmgen/pkg/adapters/slither"
	"github.com/aretw0/fsmgen/pkg/adapters/solc"
	"github.com/aretw0/fsmgen/pkg/persistence/middleware"
	"github.com/aretw0/fsmgen/pkg/ports"
	"github.com/aretw0/fsmgen/pkg/refine"
	"github.com/aretw0/fsmgen/pkg/toolchain"
)

// NewLogger builds the application logger from the log section.
func NewLogger(cfg config.Log) *slog.Logger {
	return logging.New(logging.ParseLevel(cfg.Level), logging.Format(cfg.Format))
}

// Stack holds the collaborators built from a configuration.
type Stack struct {
	Config  config.Config
	Logger  *slog.Logger
	Metrics *metrics.Collector

	Compiler ports.Compiler
	Scanner  ports.Scanner

	// Store is nil when records go to a JSONL file only.
	Store ports.OutcomeStore

	closers []func() error
}

// Build wires the toolchain, cache and store. The dialogue is created
// separately by Dialogue because most commands never talk to a model.
func Build(cfg config.Config, logger *slog.Logger) (*Stack, error) {
	s := &Stack{Config: cfg, Logger: logger, Metrics: metrics.New()}

	var locker ports.DistributedLocker
	switch cfg.Store.Kind {
	case config.StoreRedis:
		rc := cfg.Store.Redis
		store := redis.New(rc.Addr, rc.Password, rc.DB, redis.WithPrefix(rc.Prefix), redis.WithTTL(rc.TTL))
		s.Store = store
		locker = redis.NewLocker(store.Client(), rc.Prefix)
		s.closers = append(s.closers, store.Close)
	case config.StoreMemory:
		s.Store = memory.NewStore()
	}
	if s.Store != nil && len(cfg.Store.EncryptionKeys) > 0 {
		keys, err := middleware.ParseKeys(cfg.Store.EncryptionKeys...)
		if err != nil {
			return nil, s.abort(fmt.Errorf("store encryption: %w", err))
		}
		seal, err := middleware.NewEncryptionMiddleware(keys)
		if err != nil {
			return nil, s.abort(err)
		}
		s.Store = seal(s.Store)
	}

	runner, err := newRunner(cfg.Toolchain)
	if err != nil {
		return nil, s.abort(err)
	}

	var installer *toolchain.Installer
	if cfg.Toolchain.SolcSelect != "" {
		installer = toolchain.NewInstaller(solc.Install(runner),
			toolchain.WithLocker(locker),
			toolchain.WithLockTTL(cfg.Toolchain.LockTTL),
			toolchain.WithLogger(logger),
		)
	}

	var compiler ports.Compiler = solc.New(runner,
		solc.WithInstaller(installer),
		solc.WithBasePath(cfg.Toolchain.BasePath),
	)
	var scanner ports.Scanner = slither.New(runner,
		slither.WithInstaller(installer),
		slither.WithWorkDir(cfg.Toolchain.WorkDir),
	)

	if cfg.Cache.Enabled {
		cache, err := badger.Open(badger.Config{
			Path:       cfg.Cache.Path,
			InMemory:   cfg.Cache.InMemory,
			SyncWrites: true,
			TTL:        cfg.Cache.TTL,
			Logger:     logger,
		})
		if err != nil {
			return nil, s.abort(err)
		}
		s.closers = append(s.closers, cache.Close)
		compiler = toolchain.NewCachedCompiler(compiler, cache, logger)
		scanner = toolchain.NewCachedScanner(scanner, cache, logger)
	}

	s.Compiler = compiler
	s.Scanner = scanner
	return s, nil
}

func newRunner(tc config.Toolchain) (*process.Runner, error) {
	opts := []process.RunnerOption{process.WithTimeout(tc.Timeout)}
	if tc.ToolsFile != "" {
		tools, err := process.LoadTools(tc.ToolsFile)
		if err != nil {
			return nil, err
		}
		opts = append(opts, process.WithRegistry(tools))
	}
	runner := process.NewRunner(opts...)

	// A tools file wins over the plain command settings.
	runner.Register(solc.ToolSolc, tc.Solc)
	runner.Register(slither.ToolSlither, tc.Slither)
	if tc.SolcSelect != "" {
		runner.Register(solc.ToolSolcSelect, tc.SolcSelect)
	}
	return runner, nil
}

// Dialogue creates the model client.
func (s *Stack) Dialogue() (*openai.Dialogue, error) {
	llm := s.Config.LLM
	if llm.APIKey == "" && llm.BaseURL == "" {
		return nil, errors.New("no model endpoint configured: set OPENAI_API_KEY or llm.base_url")
	}
	return openai.New(openai.Config{
		BaseURL:           llm.BaseURL,
		APIKey:            llm.APIKey,
		Model:             llm.Model,
		Temperature:       llm.Temperature,
		TopP:              llm.TopP,
		RequestsPerSecond: llm.RequestsPerSecond,
		Timeout:           llm.Timeout,
	}, openai.WithLogger(s.Logger)), nil
}

// Loop creates a refinement loop over dialogue and the stack's toolchain.
func (s *Stack) Loop(dialogue ports.Dialogue) *refine.Loop {
	tc := s.Config.Toolchain
	subs := tc.Substitutions
	if tc.RemoveImports {
		subs = nil
	}
	return refine.New(dialogue, s.Compiler, s.Scanner,
		refine.WithBudgets(s.Config.Budgets),
		refine.WithSubstitutions(subs),
		refine.WithRandomSampling(s.Config.LLM.Randomize),
		refine.WithDefaultVersion(tc.DefaultVersion),
		refine.WithLogger(s.Logger),
		refine.WithObserver(s.Metrics),
	)
}

// abort releases whatever Build opened so far and returns err.
func (s *Stack) abort(err error) error {
	_ = s.Close()
	return err
}

// Close releases the store and cache.
func (s *Stack) Close() error {
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	s.closers = nil
	if len(errs) > 0 {
		return fmt.Errorf("close: %w", errors.Join(errs...))
	}
	return nil
}
