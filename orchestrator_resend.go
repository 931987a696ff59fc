package authflow

import (
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// ResendVerification re-sends the verification email. The operation is
// guarded by the resend cooldown: while it is active the remote call is
// never issued and the rejection surfaces as a rate_limited error with the
// remaining seconds in the guidance text. A successful resend starts the
// post-success cooldown and restarts the delivery record for the recipient;
// a rate-limited failure starts the shorter backoff cooldown.
func (o *Orchestrator) ResendVerification(ctx context.Context, email string) error {
	if o == nil || o.service == nil {
		return ErrNotReady
	}

	if o.resendCooldown.Active() {
		remaining := o.resendCooldown.Remaining()
		o.metricInc(MetricResendSuppressed)
		o.mu.Lock()
		if !o.closed {
			info := newErrorInfo(ErrorKindRateLimited, ErrRateLimited, "")
			info.Remediation = "You can resend in " + strconv.Itoa(remaining) + "s."
			o.state.LastError = info
		}
		o.mu.Unlock()
		o.emitAuditKind(ctx, auditEventResendRequest, FlowResend, ErrorKindRateLimited, email, "", func() map[string]string {
			return map[string]string{
				"suppressed":        "cooldown_active",
				"remaining_seconds": strconv.Itoa(remaining),
			}
		})
		return ErrRateLimited
	}

	if err := o.begin(FlowResend); err != nil {
		return err
	}
	attemptID := uuid.NewString()

	ctx, cancel := o.submitCtx(ctx)
	defer cancel()

	start := time.Now()
	err := o.service.ResendVerificationEmail(ctx, email)
	o.observeSubmit(start)

	if err != nil {
		kind := o.classify(err)
		o.finishError(FlowResend, kind, err, email)
		if kind == ErrorKindRateLimited {
			o.resendCooldown.Start(o.config.Cooldown.AfterRateLimitSeconds)
		}
		o.metricInc(MetricResendFailure)
		o.emitAudit(ctx, auditEventResendRequest, FlowResend, false, email, "", attemptID, err, nil)
		return kind.Sentinel()
	}

	o.finishSuccess(FlowResend, func(s *AuthState) {
		if s.Verification.PendingEmail == "" {
			s.Verification.PendingEmail = email
		}
	})

	o.resendCooldown.Start(o.config.Cooldown.AfterSuccessSeconds)
	o.deliveries.RecordSend(email)
	o.verificationDelayed.Store(false)

	o.metricInc(MetricResendRequest)
	o.emitAudit(ctx, auditEventResendRequest, FlowResend, true, email, "", attemptID, nil, nil)
	return nil
}
