package authflow

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/pennywise-app/authflow/internal/debounce"
)

// emailPattern is deliberately loose: real deliverability is the backend's
// call, this only gates obviously malformed input locally.
var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]{2,}$`)

// EmailFormatValid is the synchronous local format predicate used by every
// debounced email validator.
func EmailFormatValid(email string) bool {
	return emailPattern.MatchString(email)
}

// EmailValidator wraps one debounced remote email check (existence for the
// reset field, availability for the registration field). One instance per
// validated field; results for superseded inputs are discarded, never
// applied.
type EmailValidator struct {
	deb *debounce.Debouncer
}

func newEmailValidator(delay time.Duration, remote debounce.RemoteFunc) *EmailValidator {
	return &EmailValidator{
		deb: debounce.New(delay, EmailFormatValid, remote, nil),
	}
}

// Schedule records a new input value, restarting the debounce delay.
func (v *EmailValidator) Schedule(email string) {
	v.deb.Schedule(strings.TrimSpace(email))
}

// Result returns the latest validation state for this field.
func (v *EmailValidator) Result() ValidationResult {
	return v.deb.Result()
}

// Close cancels pending timers and marks in-flight checks stale. Called on
// modal teardown.
func (v *EmailValidator) Close() {
	v.deb.Close()
}

// existsRemote adapts the collaborator's existence check into the debounce
// remote predicate, counting network failures.
func (o *Orchestrator) existsRemote() debounce.RemoteFunc {
	return func(ctx context.Context, email string) (bool, error) {
		exists, err := o.service.CheckEmailExists(ctx, email)
		if err != nil {
			o.metricInc(MetricValidationRemoteError)
			return false, err
		}
		return exists, nil
	}
}
