package authflow

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pennywise-app/authflow/password"
)

// SignUp registers a new account. Local gates run first and never reach the
// remote layer: the email must be well-formed and the password must meet the
// configured strength floor (the rejection carries the evaluator's ordered
// suggestions as remediation). On success the flow enters the
// pending-verification sub-state — the session is NOT yet authenticated —
// with the verification modal open and a delivery record started for the
// address.
func (o *Orchestrator) SignUp(ctx context.Context, email, pw, name string) error {
	if o == nil || o.service == nil {
		return ErrNotReady
	}
	if err := o.begin(FlowSignUp); err != nil {
		return err
	}
	attemptID := uuid.NewString()

	if !EmailFormatValid(strings.TrimSpace(email)) {
		o.finishError(FlowSignUp, ErrorKindValidationFormat, ErrValidationFormat, "")
		o.metricInc(MetricSignUpFailure)
		o.emitAuditKind(ctx, auditEventSignUp, FlowSignUp, ErrorKindValidationFormat, email, attemptID, func() map[string]string {
			return map[string]string{
				"reason": "email_format",
			}
		})
		return ErrValidationFormat
	}

	if a := password.Evaluate(pw); a.Score < o.config.Password.MinScore {
		info := newErrorInfo(ErrorKindValidationFormat, ErrPasswordPolicy, "")
		info.Remediation = strings.Join(a.Suggestions, " ")
		o.finishErrorInfo(FlowSignUp, info)
		o.metricInc(MetricSignUpPolicyRejected)
		o.emitAuditKind(ctx, auditEventSignUp, FlowSignUp, ErrorKindValidationFormat, email, attemptID, func() map[string]string {
			return map[string]string{
				"reason":   "password_policy",
				"strength": a.Strength.String(),
			}
		})
		return ErrPasswordPolicy
	}

	ctx, cancel := o.submitCtx(ctx)
	defer cancel()

	start := time.Now()
	err := o.service.SignUpWithPassword(ctx, email, pw, name)
	o.observeSubmit(start)

	if err != nil {
		kind := o.classify(err)
		o.finishError(FlowSignUp, kind, err, email)
		if kind == ErrorKindEmailAlreadyRegistered {
			o.metricInc(MetricSignUpDuplicate)
		} else {
			o.metricInc(MetricSignUpFailure)
		}
		o.emitAudit(ctx, auditEventSignUp, FlowSignUp, false, email, "", attemptID, err, nil)
		return kind.Sentinel()
	}

	o.finishSuccess(FlowSignUp, func(s *AuthState) {
		s.Verification = VerificationState{
			PendingEmail: email,
			ModalOpen:    true,
		}
	})

	o.deliveries.RecordSend(email)
	o.verificationDelayed.Store(false)
	o.deliveries.StartPolling(context.Background(), email, func(delayed bool) {
		o.verificationDelayed.Store(delayed)
	})

	o.metricInc(MetricSignUpSuccess)
	o.emitAudit(ctx, auditEventSignUp, FlowSignUp, true, email, "", attemptID, nil, nil)
	return nil
}
