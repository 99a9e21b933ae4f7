package narrative

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sethvargo/go-retry"
	"go.uber.org/zap"

	"github.com/Simplici0/discovery/internal/metrics"
	"github.com/Simplici0/discovery/internal/pricing"
	"github.com/Simplici0/discovery/internal/profile"
)

const (
	defaultTimeout    = 90 * time.Second
	defaultMaxRetries = 2
	defaultBackoff    = time.Second
)

// Composer produces proposal narratives. It never returns an error: every
// failure degrades to Fallback.
type Composer struct {
	gen        Generator
	logger     *zap.Logger
	currency   string
	timeout    time.Duration
	maxRetries uint64
	backoff    time.Duration
}

// Option configures a Composer.
type Option func(*Composer)

func WithTimeout(d time.Duration) Option {
	return func(c *Composer) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithRetries sets how many times a transient failure is retried and the
// base of the exponential backoff between attempts.
func WithRetries(n uint64, backoff time.Duration) Option {
	return func(c *Composer) {
		c.maxRetries = n
		if backoff > 0 {
			c.backoff = backoff
		}
	}
}

func WithCurrency(currency string) Option {
	return func(c *Composer) { c.currency = currency }
}

// NewComposer returns a composer backed by gen. A nil gen yields a composer
// that always answers with Fallback, which is how the service runs without
// an API key.
func NewComposer(gen Generator, logger *zap.Logger, opts ...Option) *Composer {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Composer{
		gen:        gen,
		logger:     logger,
		currency:   "EUR",
		timeout:    defaultTimeout,
		maxRetries: defaultMaxRetries,
		backoff:    defaultBackoff,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Enabled reports whether a generator is configured.
func (c *Composer) Enabled() bool { return c.gen != nil }

// Compose returns the narrative for p and its budget b.
func (c *Composer) Compose(ctx context.Context, p profile.ClientProfile, b pricing.BudgetResult) string {
	start := time.Now()
	log := c.logger.With(zap.String("company", p.CompanyName))

	if c.gen == nil {
		metrics.RecordNarrative(metrics.OutcomeDisabled, time.Since(start))
		log.Debug("narrative generation disabled")
		return Fallback
	}

	prompt, err := BuildPrompt(p, b, c.currency)
	if err != nil {
		metrics.RecordNarrative(metrics.OutcomeFallback, time.Since(start))
		log.Error("build narrative prompt", zap.Error(err))
		return Fallback
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var (
		text     string
		attempts int
	)
	backoff := retry.WithMaxRetries(c.maxRetries, retry.NewExponential(c.backoff))
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempts++
		out, err := c.gen.Generate(ctx, prompt)
		if err != nil {
			if transient(err) {
				log.Warn("narrative attempt failed, retrying", zap.Int("attempt", attempts), zap.Error(err))
				return retry.RetryableError(err)
			}
			return err
		}
		text = strings.TrimSpace(out)
		return nil
	})
	if err == nil && text == "" {
		err = errors.New("empty narrative")
	}
	if err != nil {
		metrics.RecordNarrative(metrics.OutcomeFallback, time.Since(start))
		log.Error("narrative generation failed", zap.Int("attempts", attempts), zap.Error(err))
		return Fallback
	}

	metrics.RecordNarrative(metrics.OutcomeGenerated, time.Since(start))
	log.Info("narrative generated",
		zap.Int("attempts", attempts),
		zap.Int("chars", len(text)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return text
}
