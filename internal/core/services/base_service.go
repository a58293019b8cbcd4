package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/SscSPs/fireledger/internal/middleware"
	"github.com/SscSPs/fireledger/internal/platform/cache"
)

// BaseService provides common functionality for all services
type BaseService struct {
	Cache *cache.Cache
	Now   func() time.Time
}

func newBaseService() BaseService {
	return BaseService{
		Cache: cache.New(cache.NewNoop(), time.Minute),
		Now:   func() time.Time { return time.Now().UTC() },
	}
}

// GetLogger gets the logger from context or returns a default one
func (s *BaseService) GetLogger(ctx context.Context) *slog.Logger {
	return middleware.GetLoggerFromCtx(ctx)
}

// LogError logs an error with consistent formatting
func (s *BaseService) LogError(ctx context.Context, err error, msg string, keyvals ...any) {
	args := make([]any, 0, len(keyvals)+1)
	args = append(args, slog.String("error", err.Error()))
	args = append(args, keyvals...)
	s.GetLogger(ctx).Error(msg, args...)
}

// LogDebug logs a debug message with consistent formatting
func (s *BaseService) LogDebug(ctx context.Context, msg string, keyvals ...any) {
	s.GetLogger(ctx).Debug(msg, keyvals...)
}

// ServiceOption configures the shared parts of a service.
type ServiceOption func(*BaseService)

// WithCache makes the service read through c and mark it after mutations.
func WithCache(c *cache.Cache) ServiceOption {
	return func(s *BaseService) {
		if c != nil {
			s.Cache = c
		}
	}
}

// WithClock replaces the wall clock, for tests.
func WithClock(now func() time.Time) ServiceOption {
	return func(s *BaseService) {
		if now != nil {
			s.Now = now
		}
	}
}

func applyOptions(base *BaseService, opts []ServiceOption) {
	for _, opt := range opts {
		opt(base)
	}
}
