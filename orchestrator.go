package authflow

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/pennywise-app/authflow/feed"
	internalaudit "github.com/pennywise-app/authflow/internal/audit"
	"github.com/pennywise-app/authflow/internal/cooldown"
	"github.com/pennywise-app/authflow/internal/delivery"
	"github.com/pennywise-app/authflow/internal/realtime"
	"github.com/pennywise-app/authflow/internal/stores"
)

// Orchestrator owns the account-lifecycle state machines and is the only
// mutator of AuthState. Views read snapshots via State and call the flow
// operations; each flow admits at most one in-flight submission.
type Orchestrator struct {
	config  Config
	service AuthService
	redis   redis.UniversalClient

	audit     *internalaudit.Dispatcher
	metrics   *Metrics
	feedStore *stores.NotificationStore

	resendCooldown *cooldown.Timer
	deliveries     *delivery.Monitor

	signUpEmail *EmailValidator
	resetEmail  *EmailValidator

	verificationDelayed atomic.Bool

	mu       sync.Mutex
	state    AuthState
	inflight map[Flow]bool
	closed   bool
}

// State returns a snapshot of the current auth state. The snapshot is a
// value copy; pointer fields are duplicated so callers cannot mutate the
// orchestrator's state through it.
func (o *Orchestrator) State() AuthState {
	o.mu.Lock()
	defer o.mu.Unlock()

	snap := o.state
	if o.state.User != nil {
		user := *o.state.User
		snap.User = &user
	}
	if o.state.LastError != nil {
		lastErr := *o.state.LastError
		snap.LastError = &lastErr
	}
	return snap
}

// ClearError resets the error slot only, independent of submission state.
// Idempotent.
func (o *Orchestrator) ClearError() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.state.LastError = nil
	if o.state.Status == FlowError {
		o.state.Status = FlowIdle
	}
}

// SignOut clears the session and returns every flow to idle. The resend
// cooldown keeps ticking: the backend's rate limit does not reset because
// the user signed out.
func (o *Orchestrator) SignOut(ctx context.Context) {
	o.mu.Lock()
	pending := o.state.Verification.PendingEmail
	o.state = AuthState{}
	o.inflight = make(map[Flow]bool)
	o.mu.Unlock()

	if pending != "" {
		o.deliveries.Evict(pending)
	}
	o.verificationDelayed.Store(false)

	o.metricInc(MetricSignOut)
	o.emitAudit(ctx, auditEventSignOut, "", true, "", "", "", nil, nil)
}

// CloseVerificationModal ends the pending-verification UI: the delivery
// poller stops, the recipient's record is evicted, and the modal flag
// clears. The pending email stays recorded so a later resend still works.
func (o *Orchestrator) CloseVerificationModal(ctx context.Context) {
	o.mu.Lock()
	recipient := o.state.Verification.PendingEmail
	o.state.Verification.ModalOpen = false
	o.mu.Unlock()

	if recipient != "" {
		o.deliveries.Evict(recipient)
	}
	o.verificationDelayed.Store(false)

	o.emitAudit(ctx, auditEventVerificationEnded, "", true, recipient, "", "", nil, nil)
}

// SignUpEmailValidator is the debounced availability check for the
// registration email field.
func (o *Orchestrator) SignUpEmailValidator() *EmailValidator {
	return o.signUpEmail
}

// ResetEmailValidator is the debounced existence check gating the
// password-reset flow.
func (o *Orchestrator) ResetEmailValidator() *EmailValidator {
	return o.resetEmail
}

// ResendCooldown is a snapshot of the resend lockout countdown.
func (o *Orchestrator) ResendCooldown() CooldownState {
	return o.resendCooldown.Snapshot()
}

// DeliveryRecord returns the tracked send state for recipient, if any.
func (o *Orchestrator) DeliveryRecord(recipient string) (DeliveryRecord, bool) {
	return o.deliveries.Record(recipient)
}

// IsDeliveryDelayed re-evaluates the delay heuristic for recipient.
func (o *Orchestrator) IsDeliveryDelayed(recipient string) bool {
	return o.deliveries.IsDelayed(recipient)
}

// VerificationDelayed reports the latest poller classification for the
// pending verification email ("taking longer than usual" messaging).
func (o *Orchestrator) VerificationDelayed() bool {
	return o.verificationDelayed.Load()
}

// ConfirmDelivery records a delivery receipt for recipient, cancelling the
// delayed classification.
func (o *Orchestrator) ConfirmDelivery(recipient string) {
	o.deliveries.ConfirmDelivered(recipient)
	o.verificationDelayed.Store(false)
}

// Feed builds the notification controller for userID over the shared Redis
// store. One controller per notifications view; mutations serialize through
// it.
func (o *Orchestrator) Feed(userID string) *feed.Controller {
	return feed.NewController(o.feedStore, userID, o.config.Feed.PageSize)
}

// SubscribeNotifications opens the live change feed for userID. Run it with
// [feed.Controller.Run]; cancelling that context (or closing the
// subscription) stops delivery.
func (o *Orchestrator) SubscribeNotifications(ctx context.Context, userID string) (feed.Subscription, error) {
	return realtime.Subscribe(ctx, o.redis, o.config.Feed.RedisPrefix, userID, o.config.Feed.SubscriptionBuffer)
}

// MetricsSnapshot deep-copies the flow counters and latency buckets.
func (o *Orchestrator) MetricsSnapshot() MetricsSnapshot {
	if o == nil || o.metrics == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return o.metrics.Snapshot()
}

// AuditDropped reports how many audit events were discarded in drop mode.
func (o *Orchestrator) AuditDropped() uint64 {
	if o == nil || o.audit == nil {
		return 0
	}
	return o.audit.Dropped()
}

// Close tears the orchestrator down: validators, cooldown ticking, delivery
// pollers, and the audit dispatcher all stop. Operations after Close return
// ErrNotReady.
func (o *Orchestrator) Close() {
	if o == nil {
		return
	}

	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return
	}
	o.closed = true
	o.mu.Unlock()

	o.signUpEmail.Close()
	o.resetEmail.Close()
	o.resendCooldown.Stop()
	o.deliveries.Close()
	o.audit.Close()
}

func (o *Orchestrator) metricInc(id MetricID) {
	if o == nil || o.metrics == nil {
		return
	}
	o.metrics.Inc(id)
}

func (o *Orchestrator) observeSubmit(start time.Time) {
	if o == nil || o.metrics == nil {
		return
	}
	o.metrics.Observe(MetricSubmitLatency, time.Since(start))
}

// begin admits one submission for flow: status moves to submitting and the
// previous error clears. A second call while in flight is rejected without
// touching state.
func (o *Orchestrator) begin(flow Flow) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.closed {
		return ErrNotReady
	}
	if o.inflight[flow] {
		return ErrAttemptInFlight
	}
	if o.inflight == nil {
		o.inflight = make(map[Flow]bool)
	}
	o.inflight[flow] = true
	o.state.Status = FlowSubmitting
	o.state.LastError = nil
	return nil
}

// finishSuccess resolves flow to its success terminal state and applies the
// flow-specific mutation under the lock.
func (o *Orchestrator) finishSuccess(flow Flow, mutate func(*AuthState)) {
	o.mu.Lock()
	defer o.mu.Unlock()
	delete(o.inflight, flow)
	o.state.Status = FlowSuccess
	o.state.LastError = nil
	if mutate != nil {
		mutate(&o.state)
	}
}

// finishError resolves flow to its error terminal state with a classified,
// displayable error. The session is never mutated on failure.
func (o *Orchestrator) finishError(flow Flow, kind ErrorKind, err error, email string) {
	o.finishErrorInfo(flow, newErrorInfo(kind, err, email))
}

func (o *Orchestrator) finishErrorInfo(flow Flow, info *ErrorInfo) {
	o.mu.Lock()
	defer o.mu.Unlock()
	delete(o.inflight, flow)
	o.state.Status = FlowError
	o.state.LastError = info
}

// submitCtx applies the bounded wait every remote submission runs under.
func (o *Orchestrator) submitCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithTimeout(ctx, o.config.SubmitTimeout)
}

// classify wraps ClassifyServiceError with the timeout bookkeeping shared by
// all flows.
func (o *Orchestrator) classify(err error) ErrorKind {
	kind := ClassifyServiceError(err)
	if kind == ErrorKindNetworkTimeout {
		o.metricInc(MetricTimeoutClassified)
	}
	return kind
}
