package authflow

import (
	"context"
	"io"
	"time"

	internalaudit "github.com/pennywise-app/authflow/internal/audit"
	"github.com/pennywise-app/authflow/internal/cooldown"
	"github.com/pennywise-app/authflow/internal/debounce"
	"github.com/pennywise-app/authflow/internal/delivery"
)

// FlowStatus is the lifecycle state of one submission flow. Exactly one of
// submitting or a terminal state holds at a time; flows return to idle on the
// next user action.
type FlowStatus uint8

const (
	// FlowIdle means no submission is in progress.
	FlowIdle FlowStatus = iota
	// FlowSubmitting means a remote call is in flight.
	FlowSubmitting
	// FlowSuccess is the terminal state of a completed submission.
	FlowSuccess
	// FlowError is the terminal state of a failed submission.
	FlowError
)

func (s FlowStatus) String() string {
	switch s {
	case FlowSubmitting:
		return "submitting"
	case FlowSuccess:
		return "success"
	case FlowError:
		return "error"
	default:
		return "idle"
	}
}

// Flow identifies one orchestrated operation for re-entrancy guarding and
// audit records.
type Flow string

const (
	FlowSignIn Flow = "sign_in"
	FlowSignUp Flow = "sign_up"
	FlowReset  Flow = "reset_password"
	FlowResend Flow = "resend_verification"
	FlowOAuth  Flow = "oauth"
)

// UserSession is the authenticated session handed back by the remote
// authentication service, with claims decoded client-side for display.
type UserSession struct {
	UserID       string
	Email        string
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
}

// VerificationState tracks the pending-verification sub-state entered after
// a successful sign-up.
type VerificationState struct {
	PendingEmail string
	ModalOpen    bool
}

// AuthState is the single state surface views render from. It is returned
// by value from [Orchestrator.State]; mutating a snapshot has no effect.
type AuthState struct {
	Status        FlowStatus
	User          *UserSession
	LastError     *ErrorInfo
	Redirecting   bool
	ResetLinkSent bool
	Verification  VerificationState
}

// ErrorInfo is the classified, user-presentable form of a failed operation.
type ErrorInfo struct {
	Kind ErrorKind
	// Message is the raw collaborator message, kept as the fallback display
	// string when classification lands on ErrorKindUnclassified.
	Message string
	// Remediation is the per-kind guidance text (see ErrorKind).
	Remediation string
	// Email carries the failing address for kinds with an inline affordance
	// (one-click resend for email_not_verified).
	Email string
}

// ValidationResult is the observable state of one debounced validated field.
type ValidationResult = debounce.Result

// CooldownState is a snapshot of a rate-limit countdown.
type CooldownState = cooldown.State

// DeliveryStatus classifies a tracked email send.
type DeliveryStatus = delivery.Status

const (
	DeliveryUnknown = delivery.StatusUnknown
	DeliveryNormal  = delivery.StatusNormal
	DeliveryDelayed = delivery.StatusDelayed
)

// DeliveryRecord is the tracked send state for one recipient.
type DeliveryRecord = delivery.Record

// Credentials is the opaque token pair returned by the authentication
// service on successful sign-in.
type Credentials struct {
	AccessToken  string
	RefreshToken string
}

// ServiceError is the error payload shape of the remote authentication
// service: a message plus an optional rate-limited marker. Classification
// into an [ErrorKind] inspects both.
type ServiceError struct {
	Message     string
	RateLimited bool
}

func (e *ServiceError) Error() string {
	return e.Message
}

// AuthService is the remote authentication collaborator. Implementations
// wrap the managed backend's client; this core never implements it.
type AuthService interface {
	SignInWithPassword(ctx context.Context, email, password string) (Credentials, error)
	SignUpWithPassword(ctx context.Context, email, password, name string) error
	SendPasswordReset(ctx context.Context, email string) error
	ResendVerificationEmail(ctx context.Context, email string) error
	// OAuthRedirectURL initiates the provider flow and returns the external
	// redirect target; control leaves the application once the caller
	// navigates to it.
	OAuthRedirectURL(ctx context.Context, provider string) (string, error)
	// CheckEmailExists reports whether an account exists for email. Consulted
	// by the debounced validators, never called directly by views.
	CheckEmailExists(ctx context.Context, email string) (bool, error)
}

// AuditEvent is a structured flow record emitted by the orchestrator.
type AuditEvent = internalaudit.Event

// AuditSink receives [AuditEvent] values from the audit dispatcher.
type AuditSink = internalaudit.Sink

// NoOpSink is an [AuditSink] that silently discards all events.
type NoOpSink = internalaudit.NoOpSink

// ChannelSink is a buffered channel-based [AuditSink].
type ChannelSink = internalaudit.ChannelSink

// JSONWriterSink is an [AuditSink] that writes JSON-encoded events to an
// [io.Writer].
type JSONWriterSink = internalaudit.JSONWriterSink

// NewChannelSink creates a [ChannelSink] with the given buffer capacity.
func NewChannelSink(buffer int) *ChannelSink {
	return internalaudit.NewChannelSink(buffer)
}

// NewJSONWriterSink creates a [JSONWriterSink] that writes to w.
func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	return internalaudit.NewJSONWriterSink(w)
}
