package authflow

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ResetPassword requests a password-reset link. Unlike sign-up, submission
// requires the debounced *existence* check to have confirmed the address:
// an unchecked or unconfirmed input is rejected locally, and a confirmed
// non-existent address resolves to unknown_email with the create-an-account
// guidance. Confirming existence here is a deliberate enumeration trade-off
// (see ErrorKind).
func (o *Orchestrator) ResetPassword(ctx context.Context, email string) error {
	if o == nil || o.service == nil {
		return ErrNotReady
	}
	if err := o.begin(FlowReset); err != nil {
		return err
	}
	attemptID := uuid.NewString()

	check := o.resetEmail.Result()
	switch {
	case check.Input != email || !check.Checked:
		o.finishError(FlowReset, ErrorKindValidationFormat, ErrResetEmailUnconfirmed, "")
		o.metricInc(MetricResetFailure)
		o.emitAuditKind(ctx, auditEventResetRequest, FlowReset, ErrorKindValidationFormat, email, attemptID, func() map[string]string {
			return map[string]string{
				"reason": "existence_unconfirmed",
			}
		})
		return ErrResetEmailUnconfirmed
	case !check.RemoteFlag:
		o.finishError(FlowReset, ErrorKindUnknownEmail, ErrUnknownEmail, "")
		o.metricInc(MetricResetFailure)
		o.emitAuditKind(ctx, auditEventResetRequest, FlowReset, ErrorKindUnknownEmail, email, attemptID, nil)
		return ErrUnknownEmail
	}

	ctx, cancel := o.submitCtx(ctx)
	defer cancel()

	start := time.Now()
	err := o.service.SendPasswordReset(ctx, email)
	o.observeSubmit(start)

	if err != nil {
		kind := o.classify(err)
		o.finishError(FlowReset, kind, err, email)
		o.metricInc(MetricResetFailure)
		o.emitAudit(ctx, auditEventResetRequest, FlowReset, false, email, "", attemptID, err, nil)
		return kind.Sentinel()
	}

	// "Link sent" terminal state.
	o.finishSuccess(FlowReset, func(s *AuthState) {
		s.ResetLinkSent = true
	})
	o.metricInc(MetricResetRequest)
	o.emitAudit(ctx, auditEventResetRequest, FlowReset, true, email, "", attemptID, nil, nil)
	return nil
}
