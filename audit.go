package authflow

import (
	"context"
	"time"
)

const (
	auditEventSignIn            = "sign_in"
	auditEventSignUp            = "sign_up"
	auditEventResendRequest     = "resend_verification"
	auditEventResetRequest      = "password_reset_request"
	auditEventOAuthRedirect     = "oauth_redirect"
	auditEventSignOut           = "sign_out"
	auditEventVerificationEnded = "verification_flow_ended"
)

func (o *Orchestrator) emitAudit(
	ctx context.Context,
	eventType string,
	flow Flow,
	success bool,
	email string,
	userID string,
	attemptID string,
	err error,
	metadataBuilder func() map[string]string,
) {
	if o == nil || o.audit == nil {
		return
	}

	var metadata map[string]string
	if metadataBuilder != nil {
		metadata = metadataBuilder()
	}

	event := AuditEvent{
		Timestamp: time.Now().UTC(),
		EventType: eventType,
		Flow:      string(flow),
		Email:     email,
		UserID:    userID,
		AttemptID: attemptID,
		RequestID: requestIDFromContext(ctx),
		ClientIP:  clientIPFromContext(ctx),
		Success:   success,
		Metadata:  metadata,
	}
	if err != nil {
		event.ErrorKind = ClassifyServiceError(err).String()
		event.Error = err.Error()
	}

	o.audit.Emit(ctx, event)
}

// emitAuditKind is emitAudit for failures already classified locally, where
// re-deriving the kind from the error would be wrong (cooldown suppression,
// policy rejections).
func (o *Orchestrator) emitAuditKind(
	ctx context.Context,
	eventType string,
	flow Flow,
	kind ErrorKind,
	email string,
	attemptID string,
	metadataBuilder func() map[string]string,
) {
	if o == nil || o.audit == nil {
		return
	}

	var metadata map[string]string
	if metadataBuilder != nil {
		metadata = metadataBuilder()
	}

	o.audit.Emit(ctx, AuditEvent{
		Timestamp: time.Now().UTC(),
		EventType: eventType,
		Flow:      string(flow),
		Email:     email,
		AttemptID: attemptID,
		RequestID: requestIDFromContext(ctx),
		ClientIP:  clientIPFromContext(ctx),
		Success:   false,
		ErrorKind: kind.String(),
		Metadata:  metadata,
	})
}
