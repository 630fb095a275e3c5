package toolchain

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/fsmgen/internal/logging"
	"github.com/aretw0/fsmgen/pkg/ports"
)

// InstallFunc installs one compiler version. It must be idempotent.
type InstallFunc func(ctx context.Context, version string) error

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Installer makes sure each compiler version is installed once.
// It uses reference counting to garbage collect unused per-version locks.
type Installer struct {
	install InstallFunc

	mu        sync.Mutex            // guards locks and installed
	locks     map[string]*lockEntry // active per-version locks
	installed map[string]bool

	locker  ports.DistributedLocker // optional
	lockTTL time.Duration
	logger  *slog.Logger
}

// Option configures the Installer.
type Option func(*Installer)

// WithLocker enables distributed locking.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(i *Installer) {
		i.locker = locker
	}
}

// WithLockTTL sets the expiry of distributed locks.
func WithLockTTL(ttl time.Duration) Option {
	return func(i *Installer) {
		i.lockTTL = ttl
	}
}

// WithLogger configures a logger for the Installer.
func WithLogger(logger *slog.Logger) Option {
	return func(i *Installer) {
		i.logger = logger
	}
}

// NewInstaller creates an Installer around install.
func NewInstaller(install InstallFunc, opts ...Option) *Installer {
	i := &Installer{
		install:   install,
		locks:     make(map[string]*lockEntry),
		installed: make(map[string]bool),
		lockTTL:   2 * time.Minute,
		logger:    logging.NewNop(),
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller MUST Lock the entry.mu, and then call release(key) after unlocking.
func (i *Installer) acquire(key string) *lockEntry {
	i.mu.Lock()
	defer i.mu.Unlock()

	entry, exists := i.locks[key]
	if !exists {
		entry = &lockEntry{}
		i.locks[key] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry if it reaches zero.
func (i *Installer) release(key string) {
	i.mu.Lock()
	defer i.mu.Unlock()

	entry, exists := i.locks[key]
	if !exists {
		return
	}

	entry.refs--
	if entry.refs <= 0 {
		delete(i.locks, key)
	}
}

func (i *Installer) isInstalled(version string) bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.installed[version]
}

// Ensure installs version unless this Installer already did.
// Concurrent callers for the same version wait for a single install.
func (i *Installer) Ensure(ctx context.Context, version string) error {
	if i.isInstalled(version) {
		return nil
	}

	return i.WithLock(ctx, "solc:"+version, func(ctx context.Context) error {
		if i.isInstalled(version) {
			return nil
		}

		start := time.Now()
		if err := i.install(ctx, version); err != nil {
			return fmt.Errorf("install compiler %s: %w", version, err)
		}
		i.logger.Info("compiler installed", "version", version, "took", time.Since(start))

		i.mu.Lock()
		i.installed[version] = true
		i.mu.Unlock()
		return nil
	})
}

// WithLock executes a function while holding the lock for key.
func (i *Installer) WithLock(ctx context.Context, key string, fn func(context.Context) error) error {
	entry := i.acquire(key)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		i.release(key)
	}()

	if i.locker != nil {
		unlock, err := i.locker.Lock(ctx, key, i.lockTTL)
		if err != nil {
			return fmt.Errorf("failed to acquire distributed lock: %w", err)
		}
		defer func() {
			if err := unlock(ctx); err != nil {
				i.logger.Warn("Failed to release distributed lock (will expire via TTL)",
					"key", key,
					"err", err,
				)
			}
		}()
	}

	return fn(ctx)
}
