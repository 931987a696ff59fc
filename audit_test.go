package authflow

import (
	"context"
	"testing"
	"time"
)

func buildWithSink(t *testing.T, svc AuthService) (*Orchestrator, *ChannelSink) {
	t.Helper()
	_, client := newTestRedis(t)
	sink := NewChannelSink(16)
	o, err := New().
		WithConfig(testConfig()).
		WithRedis(client).
		WithAuthService(svc).
		WithAuditSink(sink).
		Build()
	if err != nil {
		t.Fatalf("build orchestrator: %v", err)
	}
	t.Cleanup(o.Close)
	return o, sink
}

func nextAuditEvent(t *testing.T, sink *ChannelSink) AuditEvent {
	t.Helper()
	select {
	case ev := <-sink.Events():
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("no audit event arrived")
	}
	return AuditEvent{}
}

func TestSignInEmitsAuditEvent(t *testing.T) {
	svc := &fakeAuthService{
		signIn: func(context.Context, string, string) (Credentials, error) {
			return Credentials{AccessToken: "opaque"}, nil
		},
	}
	o, sink := buildWithSink(t, svc)

	ctx := WithRequestID(WithClientIP(context.Background(), "203.0.113.9"), "req-42")
	if err := o.SignIn(ctx, "a@b.com", "pw"); err != nil {
		t.Fatal(err)
	}

	ev := nextAuditEvent(t, sink)
	if ev.EventType != "sign_in" || !ev.Success {
		t.Fatalf("unexpected event %+v", ev)
	}
	if ev.Email != "a@b.com" {
		t.Fatalf("expected email on event, got %q", ev.Email)
	}
	if ev.RequestID != "req-42" || ev.ClientIP != "203.0.113.9" {
		t.Fatalf("expected context values copied, got %+v", ev)
	}
	if ev.AttemptID == "" {
		t.Fatal("expected attempt id")
	}
	if ev.Timestamp.IsZero() {
		t.Fatal("expected timestamp")
	}
}

func TestFailedSignInAuditCarriesClassification(t *testing.T) {
	svc := &fakeAuthService{
		signIn: func(context.Context, string, string) (Credentials, error) {
			return Credentials{}, &ServiceError{Message: "Invalid login credentials"}
		},
	}
	o, sink := buildWithSink(t, svc)

	_ = o.SignIn(context.Background(), "a@b.com", "wrong")

	ev := nextAuditEvent(t, sink)
	if ev.Success {
		t.Fatal("expected failure event")
	}
	if ev.ErrorKind != "invalid_credentials" {
		t.Fatalf("expected classified kind, got %q", ev.ErrorKind)
	}
	if ev.Error == "" {
		t.Fatal("expected raw error text")
	}
}

func TestSuppressedResendAuditMetadata(t *testing.T) {
	svc := &fakeAuthService{
		resend: func(context.Context, string) error { return nil },
	}
	o, sink := buildWithSink(t, svc)

	if err := o.ResendVerification(context.Background(), "a@b.com"); err != nil {
		t.Fatal(err)
	}
	nextAuditEvent(t, sink) // the successful resend

	_ = o.ResendVerification(context.Background(), "a@b.com")

	ev := nextAuditEvent(t, sink)
	if ev.ErrorKind != "rate_limited" {
		t.Fatalf("expected rate_limited, got %q", ev.ErrorKind)
	}
	if ev.Metadata["suppressed"] != "cooldown_active" {
		t.Fatalf("expected suppression metadata, got %v", ev.Metadata)
	}
	if ev.Metadata["remaining_seconds"] == "" {
		t.Fatalf("expected remaining seconds in metadata, got %v", ev.Metadata)
	}
}

func TestPasswordPolicyAuditMetadata(t *testing.T) {
	o, sink := buildWithSink(t, &fakeAuthService{})

	_ = o.SignUp(context.Background(), "a@b.com", "weak", "Ada")

	ev := nextAuditEvent(t, sink)
	if ev.EventType != "sign_up" || ev.Success {
		t.Fatalf("unexpected event %+v", ev)
	}
	if ev.Metadata["reason"] != "password_policy" {
		t.Fatalf("expected policy rejection metadata, got %v", ev.Metadata)
	}
	if ev.Metadata["strength"] == "" {
		t.Fatalf("expected strength band in metadata, got %v", ev.Metadata)
	}
}
