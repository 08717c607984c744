package joincode

import (
	"context"
	"errors"
	"log/slog"

	"github.com/mmynk/watchtogether/internal/apperr"
	"github.com/mmynk/watchtogether/internal/metrics"
	"github.com/mmynk/watchtogether/internal/storage"
)

// Allocator issues join codes that no group uses at the time of issuance.
//
// The existence check and the later insert are separate statements, so two
// allocators can pick the same free code. The store's unique index on the
// join code catches that case: Allocate treats storage.ErrConflict from the
// claim step as a collision and tries again within the same attempt budget.
type Allocator struct {
	checker     Checker
	maxAttempts int
	generate    func() string
}

// Option configures an Allocator.
type Option func(*Allocator)

// WithMaxAttempts caps the number of candidate codes tried per allocation.
func WithMaxAttempts(n int) Option {
	return func(a *Allocator) {
		if n > 0 {
			a.maxAttempts = n
		}
	}
}

// WithGenerator replaces the random candidate source.
func WithGenerator(fn func() string) Option {
	return func(a *Allocator) {
		a.generate = fn
	}
}

// NewAllocator creates an Allocator that checks candidates against checker.
func NewAllocator(checker Checker, opts ...Option) *Allocator {
	a := &Allocator{
		checker:     checker,
		maxAttempts: DefaultMaxAttempts,
		generate:    func() string { return Generate(nil) },
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// GenerateUnique returns a code no group currently uses.
func (a *Allocator) GenerateUnique(ctx context.Context) (string, error) {
	return a.Allocate(ctx, nil)
}

// Allocate finds a free code and hands it to claim, which is expected to
// persist it. If claim returns an error wrapping storage.ErrConflict the code
// was taken concurrently and another candidate is tried. Any other claim
// error is returned as is. A nil claim only performs the existence check.
func (a *Allocator) Allocate(ctx context.Context, claim func(code string) error) (string, error) {
	for attempt := 1; attempt <= a.maxAttempts; attempt++ {
		metrics.JoinCodeAttempts.Inc()
		code := a.generate()

		exists, err := a.checker.JoinCodeExists(ctx, code)
		if err != nil {
			return "", apperr.Wrap(apperr.KindRemoteRead, err, "could not check join code")
		}
		if exists {
			metrics.JoinCodeCollisions.Inc()
			slog.Debug("Join code collision", "attempt", attempt)
			continue
		}

		if claim == nil {
			return code, nil
		}
		err = claim(code)
		if err == nil {
			return code, nil
		}
		if !errors.Is(err, storage.ErrConflict) {
			return "", err
		}
		metrics.JoinCodeCollisions.Inc()
		slog.Warn("Join code claimed concurrently", "attempt", attempt)
	}

	metrics.JoinCodeExhausted.Inc()
	slog.Error("Join code generation exhausted", "attempts", a.maxAttempts)
	return "", apperr.New(apperr.KindCodeGenerationExhausted,
		"could not find a free join code after %d attempts", a.maxAttempts)
}
