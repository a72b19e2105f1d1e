// Package auth resolves the caller of an API request from a bearer token.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/golang-jwt/jwt/v5"
)

// RoleAdmin grants the account administration operations.
const RoleAdmin = "admin"

var ErrInvalidToken = errors.New("auth: invalid or expired token")

// Identity is the authenticated caller. AccountID is the account every
// money movement acts on; admins may have none.
type Identity struct {
	AccountID uuid.UUID
	Admin     bool
}

// Claims are the token claims the server reads.
type Claims struct {
	Role string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// JWTResolver verifies HS256 tokens signed with a shared secret.
type JWTResolver struct {
	secret []byte
	now    func() time.Time
}

func NewJWTResolver(secret string) *JWTResolver {
	return &JWTResolver{secret: []byte(secret), now: time.Now}
}

// Resolve validates token and returns the caller it names.
func (r *JWTResolver) Resolve(token string) (*Identity, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return r.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(r.now))
	if err != nil || !parsed.Valid {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	identity := &Identity{Admin: claims.Role == RoleAdmin}
	if claims.Subject == "" {
		if identity.Admin {
			return identity, nil
		}
		return nil, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}
	identity.AccountID, err = uuid.FromString(claims.Subject)
	if err != nil {
		return nil, fmt.Errorf("%w: subject is not an account id", ErrInvalidToken)
	}
	return identity, nil
}

// Issue signs a token for accountID. A zero ttl issues a token that does not
// expire.
func (r *JWTResolver) Issue(accountID uuid.UUID, admin bool, ttl time.Duration) (string, error) {
	now := r.now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt: jwt.NewNumericDate(now),
		},
	}
	if accountID != uuid.Nil {
		claims.Subject = accountID.String()
	}
	if admin {
		claims.Role = RoleAdmin
	}
	if ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(r.secret)
}

type identityKey struct{}

func WithIdentity(ctx context.Context, identity *Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, identity)
}

// FromContext returns the caller stored by the middleware, if any.
func FromContext(ctx context.Context) (*Identity, bool) {
	identity, ok := ctx.Value(identityKey{}).(*Identity)
	return identity, ok && identity != nil
}
