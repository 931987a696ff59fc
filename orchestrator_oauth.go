package authflow

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// SignInWithOAuth initiates the external provider flow and returns the
// redirect target. Because control leaves the application, success sets the
// Redirecting flag instead of resolving to a terminal state: the UI keeps
// its loading affordance without appearing stuck, and a second click while
// redirecting is rejected. CancelOAuthRedirect clears the flag when the user
// navigates back without completing the provider flow.
func (o *Orchestrator) SignInWithOAuth(ctx context.Context, provider string) (string, error) {
	if o == nil || o.service == nil {
		return "", ErrNotReady
	}

	o.mu.Lock()
	if o.state.Redirecting {
		o.mu.Unlock()
		return "", ErrAttemptInFlight
	}
	o.mu.Unlock()

	if err := o.begin(FlowOAuth); err != nil {
		return "", err
	}
	attemptID := uuid.NewString()

	ctx, cancel := o.submitCtx(ctx)
	defer cancel()

	start := time.Now()
	url, err := o.service.OAuthRedirectURL(ctx, provider)
	o.observeSubmit(start)

	if err != nil {
		kind := o.classify(err)
		o.finishError(FlowOAuth, kind, err, "")
		o.metricInc(MetricOAuthFailure)
		o.emitAudit(ctx, auditEventOAuthRedirect, FlowOAuth, false, "", "", attemptID, err, func() map[string]string {
			return map[string]string{
				"provider": provider,
			}
		})
		return "", kind.Sentinel()
	}

	o.mu.Lock()
	delete(o.inflight, FlowOAuth)
	o.state.Redirecting = true
	// Status stays submitting: the redirect is in progress, not a terminal
	// outcome the views should render as finished.
	o.mu.Unlock()

	o.metricInc(MetricOAuthRedirect)
	o.emitAudit(ctx, auditEventOAuthRedirect, FlowOAuth, true, "", "", attemptID, nil, func() map[string]string {
		return map[string]string{
			"provider": provider,
		}
	})
	return url, nil
}

// CancelOAuthRedirect clears the redirecting flag after the user returns
// without completing the provider flow. Idempotent.
func (o *Orchestrator) CancelOAuthRedirect() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.state.Redirecting {
		o.state.Redirecting = false
		if o.state.Status == FlowSubmitting {
			o.state.Status = FlowIdle
		}
	}
}
