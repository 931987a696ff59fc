package authflow

import (
	"github.com/golang-jwt/jwt/v5"
)

// sessionFromCredentials builds the UserSession for a successful sign-in.
// Access-token claims are decoded without signature verification — the token
// was just issued to us over the authenticated channel and verification is
// the backend's job; the decode only feeds display state (user id, email,
// expiry). A token that fails to decode still yields a usable session.
func sessionFromCredentials(creds Credentials, fallbackEmail string) *UserSession {
	sess := &UserSession{
		Email:        fallbackEmail,
		AccessToken:  creds.AccessToken,
		RefreshToken: creds.RefreshToken,
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(creds.AccessToken, claims); err != nil {
		return sess
	}

	if sub, err := claims.GetSubject(); err == nil && sub != "" {
		sess.UserID = sub
	}
	if email, ok := claims["email"].(string); ok && email != "" {
		sess.Email = email
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		sess.ExpiresAt = exp.Time
	}
	return sess
}
