package auth

import (
	"context"

	"github.com/mmynk/watchtogether/internal/models"
)

// Authenticator verifies who is calling. The group, rating and movie
// operations only need the resulting user ID; how it was proven is up to the
// implementation.
type Authenticator interface {
	// Register creates a new account. Returns ErrEmailExists if the email is
	// taken.
	Register(ctx context.Context, email, displayName, credential string) (*models.User, error)

	// Authenticate returns the user whose credential matches, or
	// ErrInvalidCredentials.
	Authenticate(ctx context.Context, email, credential string) (*models.User, error)

	// ValidateCredential checks the credential before anything is stored.
	ValidateCredential(credential string) error
}
