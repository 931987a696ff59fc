package authflow

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// SignIn submits an email/password pair. On success the session is set and
// the flow resolves to success; on failure the error is classified and
// attached without touching the session. A second call while one is in
// flight returns ErrAttemptInFlight.
//
// When the failure kind is email_not_verified, ErrorInfo.Email carries the
// failing address so the UI can offer a one-click resend.
func (o *Orchestrator) SignIn(ctx context.Context, email, pw string) error {
	if o == nil || o.service == nil {
		return ErrNotReady
	}
	if err := o.begin(FlowSignIn); err != nil {
		return err
	}
	attemptID := uuid.NewString()

	ctx, cancel := o.submitCtx(ctx)
	defer cancel()

	start := time.Now()
	creds, err := o.service.SignInWithPassword(ctx, email, pw)
	o.observeSubmit(start)

	if err != nil {
		kind := o.classify(err)
		o.finishError(FlowSignIn, kind, err, email)
		if kind == ErrorKindRateLimited {
			o.metricInc(MetricSignInRateLimited)
		} else {
			o.metricInc(MetricSignInFailure)
		}
		o.emitAudit(ctx, auditEventSignIn, FlowSignIn, false, email, "", attemptID, err, nil)
		return kind.Sentinel()
	}

	sess := sessionFromCredentials(creds, email)
	o.finishSuccess(FlowSignIn, func(s *AuthState) {
		s.User = sess
	})
	o.metricInc(MetricSignInSuccess)
	o.emitAudit(ctx, auditEventSignIn, FlowSignIn, true, email, sess.UserID, attemptID, nil, nil)
	return nil
}
