package authflow

import (
	"errors"
	"time"
)

// Config carries all orchestrator tuning. Configure once before Build and
// treat as immutable afterwards.
type Config struct {
	// SubmitTimeout bounds every remote submission; exceeding it resolves
	// the flow to a terminal error classified as network_timeout.
	SubmitTimeout time.Duration

	Debounce DebounceConfig
	Password PasswordPolicyConfig
	Cooldown CooldownConfig
	Delivery DeliveryConfig
	Feed     FeedConfig
	Audit    AuditConfig
	Metrics  MetricsConfig
}

/*
====================================
DEBOUNCE CONFIG
====================================
*/

// DebounceConfig tunes the remote-validation debouncers.
type DebounceConfig struct {
	// Delay is how long an input must stabilize before the remote check runs.
	Delay time.Duration
}

/*
====================================
PASSWORD POLICY CONFIG
====================================
*/

// PasswordPolicyConfig is the client-side strength floor enforced before a
// sign-up ever reaches the remote service.
type PasswordPolicyConfig struct {
	// MinScore is the minimum password.Evaluate score (0–5) accepted.
	MinScore int
}

/*
====================================
COOLDOWN CONFIG
====================================
*/

// CooldownConfig tunes the resend lockouts.
type CooldownConfig struct {
	// TickInterval is the countdown tick period. One second in production;
	// tests shorten it.
	TickInterval time.Duration
	// AfterSuccessSeconds is the lockout after a successful resend.
	AfterSuccessSeconds int
	// AfterRateLimitSeconds is the lockout after a rate-limited resend.
	AfterRateLimitSeconds int
}

/*
====================================
DELIVERY CONFIG
====================================
*/

// DeliveryConfig tunes the email-delivery-delay heuristic.
type DeliveryConfig struct {
	// DelayThreshold is how long an unconfirmed send may sit before it
	// classifies as delayed.
	DelayThreshold time.Duration
	// PollInterval is the re-check cadence while a verification UI is open.
	PollInterval time.Duration
}

/*
====================================
FEED CONFIG
====================================
*/

// FeedConfig tunes the notification feed.
type FeedConfig struct {
	// RedisPrefix namespaces the notification keys and channels.
	RedisPrefix string
	// PageSize bounds each page fetch.
	PageSize int
	// SubscriptionBuffer bounds the in-flight real-time event queue.
	SubscriptionBuffer int
}

/*
====================================
AUDIT CONFIG
====================================
*/

// AuditConfig controls the async flow-event dispatcher.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	// DropIfFull drops events instead of blocking a flow on a slow sink.
	DropIfFull bool
}

/*
====================================
METRICS CONFIG
====================================
*/

// MetricsConfig controls the in-process counters.
type MetricsConfig struct {
	Enabled bool
	// EnableLatencyHistograms additionally records submit latency buckets.
	EnableLatencyHistograms bool
}

func defaultConfig() Config {
	return Config{
		SubmitTimeout: 15 * time.Second,
		Debounce: DebounceConfig{
			Delay: 500 * time.Millisecond,
		},
		Password: PasswordPolicyConfig{
			MinScore: 4,
		},
		Cooldown: CooldownConfig{
			TickInterval:          time.Second,
			AfterSuccessSeconds:   60,
			AfterRateLimitSeconds: 30,
		},
		Delivery: DeliveryConfig{
			DelayThreshold: 2 * time.Minute,
			PollInterval:   30 * time.Second,
		},
		Feed: FeedConfig{
			RedisPrefix:        "nf",
			PageSize:           20,
			SubscriptionBuffer: 16,
		},
		Audit: AuditConfig{
			Enabled:    true,
			BufferSize: 256,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
	}
}

func cloneConfig(cfg Config) Config {
	// No reference types inside; a value copy is a deep copy.
	return cfg
}

// Validate rejects configurations the orchestrator cannot run with.
func (c Config) Validate() error {
	if c.SubmitTimeout <= 0 {
		return errors.New("SubmitTimeout must be positive")
	}
	if c.Debounce.Delay <= 0 {
		return errors.New("Debounce.Delay must be positive")
	}
	if c.Password.MinScore < 0 || c.Password.MinScore > 5 {
		return errors.New("Password.MinScore must be in 0..5")
	}
	if c.Cooldown.TickInterval <= 0 {
		return errors.New("Cooldown.TickInterval must be positive")
	}
	if c.Cooldown.AfterSuccessSeconds < 0 || c.Cooldown.AfterRateLimitSeconds < 0 {
		return errors.New("Cooldown durations must not be negative")
	}
	if c.Delivery.DelayThreshold <= 0 {
		return errors.New("Delivery.DelayThreshold must be positive")
	}
	if c.Delivery.PollInterval <= 0 {
		return errors.New("Delivery.PollInterval must be positive")
	}
	if c.Feed.PageSize <= 0 {
		return errors.New("Feed.PageSize must be positive")
	}
	return nil
}
