package authflow

import (
	"errors"

	"github.com/redis/go-redis/v9"

	internalaudit "github.com/pennywise-app/authflow/internal/audit"
	"github.com/pennywise-app/authflow/internal/cooldown"
	"github.com/pennywise-app/authflow/internal/delivery"
)

// Builder assembles an [Orchestrator]. Configure, then Build exactly once;
// construction is allocation-only until Build.
type Builder struct {
	config  Config
	redis   redis.UniversalClient
	service AuthService
	sink    AuditSink

	built bool
}

// New creates a Builder seeded with the default configuration.
func New() *Builder {
	return &Builder{
		config: defaultConfig(),
	}
}

// WithConfig replaces the entire configuration.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithRedis sets the Redis client backing the notification store and the
// real-time change feed.
func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.redis = client
	return b
}

// WithAuthService sets the remote authentication collaborator. Required.
func (b *Builder) WithAuthService(service AuthService) *Builder {
	b.service = service
	return b
}

// WithAuditSink sets the destination for flow audit events.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.sink = sink
	return b
}

// WithMetricsEnabled toggles the in-process counters.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// WithLatencyHistograms toggles submit latency buckets.
func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

// Build validates the configuration and dependencies and wires the
// orchestrator subsystems. A Builder builds once.
func (b *Builder) Build() (*Orchestrator, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := cloneConfig(b.config)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if b.service == nil {
		return nil, errors.New("auth service required")
	}
	if b.redis == nil {
		return nil, errors.New("redis client required")
	}

	o := &Orchestrator{
		config:         cfg,
		service:        b.service,
		redis:          b.redis,
		metrics:        NewMetrics(cfg.Metrics),
		feedStore:      NewNotificationStore(b.redis, cfg.Feed.RedisPrefix),
		resendCooldown: cooldown.New(cfg.Cooldown.TickInterval, nil),
		deliveries:     delivery.New(cfg.Delivery.DelayThreshold, cfg.Delivery.PollInterval),
		inflight:       make(map[Flow]bool),
	}

	o.audit = internalaudit.NewDispatcher(internalaudit.Config{
		Enabled:    cfg.Audit.Enabled,
		BufferSize: cfg.Audit.BufferSize,
		DropIfFull: cfg.Audit.DropIfFull,
	}, b.sink)

	o.signUpEmail = newEmailValidator(cfg.Debounce.Delay, o.existsRemote())
	o.resetEmail = newEmailValidator(cfg.Debounce.Delay, o.existsRemote())

	b.built = true
	return o, nil
}
