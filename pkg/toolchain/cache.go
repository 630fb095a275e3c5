package toolchain

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"log/slog"

	"github.com/aretw0/fsmgen/internal/logging"
	"github.com/aretw0/fsmgen/pkg/domain"
	"github.com/aretw0/fsmgen/pkg/ports"
)

// CacheKey derives the cache key of a toolchain call.
func CacheKey(kind, code string, target ports.Target) string {
	sum := sha256.Sum256([]byte(target.Version + "\x00" + code))
	return kind + ":" + target.Version + ":" + hex.EncodeToString(sum[:])
}

// CachedCompiler memoizes successful compiler calls. Toolchain errors are never cached.
type CachedCompiler struct {
	inner  ports.Compiler
	cache  ports.ResultCache
	logger *slog.Logger
}

// NewCachedCompiler wraps inner with cache.
func NewCachedCompiler(inner ports.Compiler, cache ports.ResultCache, logger *slog.Logger) *CachedCompiler {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &CachedCompiler{inner: inner, cache: cache, logger: logger}
}

// Compile returns a cached result for code when one exists, otherwise it compiles and stores a successful result.
func (c *CachedCompiler) Compile(ctx context.Context, code string, target ports.Target) (ports.CompileResult, error) {
	key := CacheKey("compile", code, target)
	if raw, ok, err := c.cache.Get(ctx, key); err == nil && ok {
		var res ports.CompileResult
		if err := json.Unmarshal(raw, &res); err == nil {
			return res, nil
		}
	} else if err != nil {
		c.logger.Warn("compile cache lookup failed", "err", err)
	}

	res, err := c.inner.Compile(ctx, code, target)
	if err != nil {
		return res, err
	}
	c.store(ctx, key, res)
	return res, nil
}

func (c *CachedCompiler) store(ctx context.Context, key string, v any) {
	raw, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := c.cache.Set(ctx, key, raw); err != nil {
		c.logger.Warn("compile cache store failed", "err", err)
	}
}

// CachedScanner memoizes successful analyzer calls. Failed analyses are never cached.
type CachedScanner struct {
	inner  ports.Scanner
	cache  ports.ResultCache
	logger *slog.Logger
}

// NewCachedScanner wraps inner with cache.
func NewCachedScanner(inner ports.Scanner, cache ports.ResultCache, logger *slog.Logger) *CachedScanner {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &CachedScanner{inner: inner, cache: cache, logger: logger}
}

// Scan returns cached findings for code when present, otherwise it runs the analyzer.
func (s *CachedScanner) Scan(ctx context.Context, code string, target ports.Target) ([]domain.Finding, error) {
	key := CacheKey("scan", code, target)
	if raw, ok, err := s.cache.Get(ctx, key); err == nil && ok {
		var findings []domain.Finding
		if err := json.Unmarshal(raw, &findings); err == nil {
			return findings, nil
		}
	} else if err != nil {
		s.logger.Warn("scan cache lookup failed", "err", err)
	}

	findings, err := s.inner.Scan(ctx, code, target)
	if err != nil {
		return nil, err
	}
	raw, err := json.Marshal(findings)
	if err == nil {
		if err := s.cache.Set(ctx, key, raw); err != nil {
			s.logger.Warn("scan cache store failed", "err", err)
		}
	}
	return findings, nil
}
