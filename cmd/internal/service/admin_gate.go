package service

import (
	"crypto/sha256"
	"crypto/subtle"
	"pawsclinic/cmd/internal/utils/apierror"
	"strings"
)

// DefaultAdminGate checks the shared admin secret. With no secret configured
// every request is refused.
type DefaultAdminGate struct {
	secret string
}

func NewAdminGate(secret string) *DefaultAdminGate {
	return &DefaultAdminGate{secret: strings.TrimSpace(secret)}
}

func (g *DefaultAdminGate) Configured() bool {
	return g.secret != ""
}

func (g *DefaultAdminGate) Authorize(supplied string) apierror.ErrorResponse {
	if !g.Configured() {
		return apierror.AdminSecretNotConfiguredError
	}

	// Hashing first keeps the comparison independent of the secret's length.
	want := sha256.Sum256([]byte(g.secret))
	got := sha256.Sum256([]byte(strings.TrimSpace(supplied)))
	if subtle.ConstantTimeCompare(want[:], got[:]) != 1 {
		return apierror.UnauthorizedError
	}
	return nil
}
