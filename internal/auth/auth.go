package auth

import (
	"context"
	"errors"
	"time"

	"github.com/frahmantamala/property-hub/internal/identity"
	"github.com/golang-jwt/jwt/v5"
)

// Every verification failure is ErrInvalidCredential to callers. The second
// sentinel in the chain says why, for logs.
var (
	ErrInvalidCredential   = errors.New("invalid credential")
	ErrCredentialMalformed = errors.New("credential malformed")
	ErrCredentialSignature = errors.New("credential signature rejected")
	ErrCredentialExpired   = errors.New("credential expired")
	ErrCredentialClaims    = errors.New("credential claims rejected")

	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserInactive       = errors.New("user is inactive")
)

// Claims carried by an access token. Subject is the decimal user id.
type Claims struct {
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

type AuthTokens struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// Verifier turns a bearer credential into a subject id.
type Verifier interface {
	Verify(credential string) (int64, error)
}

type UserLookup interface {
	GetUserByEmail(ctx context.Context, email string) (*identity.User, error)
}

type ServiceAPI interface {
	Authenticate(ctx context.Context, dto LoginDTO) (AuthTokens, error)
}

// FailureCause names the reason behind an ErrInvalidCredential for logging.
func FailureCause(err error) string {
	switch {
	case errors.Is(err, ErrCredentialExpired):
		return "expired"
	case errors.Is(err, ErrCredentialSignature):
		return "signature"
	case errors.Is(err, ErrCredentialMalformed):
		return "malformed"
	case errors.Is(err, ErrCredentialClaims):
		return "claims"
	default:
		return "unknown"
	}
}
