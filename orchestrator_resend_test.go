package authflow

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
)

func TestResendSuccessStartsCooldown(t *testing.T) {
	svc := &fakeAuthService{
		resend: func(context.Context, string) error { return nil },
	}
	cfg := testConfig()
	cfg.Cooldown.AfterSuccessSeconds = 60
	o := newTestOrchestrator(t, svc, cfg)

	if err := o.ResendVerification(context.Background(), "a@b.com"); err != nil {
		t.Fatal(err)
	}

	cd := o.ResendCooldown()
	if !cd.Active || cd.RemainingSeconds <= 0 || cd.RemainingSeconds > 60 {
		t.Fatalf("expected active 60s cooldown, got %+v", cd)
	}
	// The resend restarts delivery tracking for the address.
	if _, ok := o.DeliveryRecord("a@b.com"); !ok {
		t.Fatal("expected delivery record after resend")
	}
	if st := o.State(); st.Verification.PendingEmail != "a@b.com" {
		t.Fatalf("expected pending email set, got %q", st.Verification.PendingEmail)
	}
}

func TestResendSuppressedWhileCooldownActive(t *testing.T) {
	var remoteCalls atomic.Int32
	svc := &fakeAuthService{
		resend: func(context.Context, string) error {
			remoteCalls.Add(1)
			return nil
		},
	}
	cfg := testConfig()
	cfg.Cooldown.AfterSuccessSeconds = 60
	o := newTestOrchestrator(t, svc, cfg)

	if err := o.ResendVerification(context.Background(), "a@b.com"); err != nil {
		t.Fatal(err)
	}

	err := o.ResendVerification(context.Background(), "a@b.com")
	if !errors.Is(err, ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited, got %v", err)
	}
	// Suppression is purely local.
	if remoteCalls.Load() != 1 {
		t.Fatalf("expected one remote call, got %d", remoteCalls.Load())
	}

	lastErr := o.State().LastError
	if lastErr == nil || lastErr.Kind != ErrorKindRateLimited {
		t.Fatalf("unexpected classification %+v", lastErr)
	}
	if !strings.Contains(lastErr.Remediation, "resend in") {
		t.Fatalf("expected countdown in guidance, got %q", lastErr.Remediation)
	}

	snap := o.MetricsSnapshot()
	if snap.Counters[MetricResendSuppressed] != 1 {
		t.Fatalf("expected suppression counted, got %d", snap.Counters[MetricResendSuppressed])
	}
}

func TestResendRateLimitedByServiceStartsBackoff(t *testing.T) {
	svc := &fakeAuthService{
		resend: func(context.Context, string) error {
			return &ServiceError{Message: "over_email_send_rate_limit", RateLimited: true}
		},
	}
	cfg := testConfig()
	cfg.Cooldown.AfterRateLimitSeconds = 30
	o := newTestOrchestrator(t, svc, cfg)

	err := o.ResendVerification(context.Background(), "a@b.com")
	if !errors.Is(err, ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited, got %v", err)
	}

	cd := o.ResendCooldown()
	if !cd.Active || cd.RemainingSeconds <= 0 || cd.RemainingSeconds > 30 {
		t.Fatalf("expected 30s backoff cooldown, got %+v", cd)
	}
}

func TestResendOtherFailureLeavesCooldownIdle(t *testing.T) {
	svc := &fakeAuthService{
		resend: func(context.Context, string) error {
			return &ServiceError{Message: "service unavailable"}
		},
	}
	o := newTestOrchestrator(t, svc, testConfig())

	err := o.ResendVerification(context.Background(), "a@b.com")
	if !errors.Is(err, ErrServiceUnavailable) {
		t.Fatalf("expected ErrServiceUnavailable, got %v", err)
	}
	if o.ResendCooldown().Active {
		t.Fatal("non-rate-limit failure must not start the cooldown")
	}
}
