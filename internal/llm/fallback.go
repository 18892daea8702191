package llm

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"frigo/internal/domain"
	"frigo/internal/port"
)

// circuitState tracks rate-limit backoff for a single provider.
type circuitState struct {
	mu      sync.RWMutex
	resetAt time.Time // zero value = closed (healthy)
}

func (c *circuitState) isOpenWithReset(now time.Time) (time.Time, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.resetAt, !c.resetAt.IsZero() && now.Before(c.resetAt)
}

func (c *circuitState) open(resetAt time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resetAt = resetAt
}

// FallbackProvider tries providers in order, skipping those with open
// circuits. It implements Provider.
type FallbackProvider struct {
	provs    []Provider
	circuits []*circuitState
	names    []string
}

// NewFallbackProvider creates a FallbackProvider from an ordered list of
// providers and their names.
func NewFallbackProvider(provs []Provider, names []string) *FallbackProvider {
	circuits := make([]*circuitState, len(provs))
	for i := range circuits {
		circuits[i] = &circuitState{}
	}
	return &FallbackProvider{
		provs:    provs,
		circuits: circuits,
		names:    names,
	}
}

func (f *FallbackProvider) Structure(ctx context.Context, input *domain.StandardizedRecipeData) (*port.StructureOutput, error) {
	return try(f, func(p Provider) (*port.StructureOutput, error) {
		return p.Structure(ctx, input)
	})
}

func (f *FallbackProvider) Transcribe(ctx context.Context, imageBytes []byte, contentType string) (*domain.RawRecipeText, error) {
	return try(f, func(p Provider) (*domain.RawRecipeText, error) {
		return p.Transcribe(ctx, imageBytes, contentType)
	})
}

func try[T any](f *FallbackProvider, call func(Provider) (T, error)) (T, error) {
	var zero T
	now := time.Now()
	var lastErr error
	allRateLimited := true
	var earliestReset time.Time

	for i, p := range f.provs {
		if resetAt, open := f.circuits[i].isOpenWithReset(now); open {
			log.Printf("llm.FallbackProvider: skipping %s (circuit open until %s)", f.names[i], resetAt.Format(time.RFC3339))
			if earliestReset.IsZero() || resetAt.Before(earliestReset) {
				earliestReset = resetAt
			}
			continue
		}

		out, err := call(p)
		if err == nil {
			return out, nil
		}

		log.Printf("llm.FallbackProvider: %s failed: %v", f.names[i], err)
		lastErr = err

		var rlErr *RateLimitError
		if errors.As(err, &rlErr) {
			resetAt := now.Add(rlErr.RetryAfter)
			f.circuits[i].open(resetAt)
			if earliestReset.IsZero() || resetAt.Before(earliestReset) {
				earliestReset = resetAt
			}
		} else {
			allRateLimited = false
		}
	}

	if lastErr == nil || allRateLimited {
		// Every provider was rate limited or skipped with an open circuit.
		retryAfter := time.Until(earliestReset)
		if retryAfter < 0 {
			retryAfter = time.Second
		}
		return zero, NewRateLimitError("all", fmt.Errorf("all providers rate limited"), int(retryAfter.Seconds()))
	}

	return zero, fmt.Errorf("all providers failed: %w", lastErr)
}
