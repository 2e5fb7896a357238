package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"storefront/internal/domain"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid token")

// Claims are the identity provider's token claims. The user id is read from
// uid, falling back to the subject.
type Claims struct {
	Email string `json:"email"`
	UID   string `json:"uid,omitempty"`
	jwt.RegisteredClaims
}

func (c Claims) userID() string {
	if c.UID != "" {
		return c.UID
	}
	return c.Subject
}

// Authorizer verifies identity tokens and assigns the session role once.
type Authorizer struct {
	secret []byte
	admins map[string]struct{}
	now    func() time.Time
}

// NewAuthorizer builds an Authorizer. Accounts whose email is in adminEmails
// receive the admin role; everyone else is a customer.
func NewAuthorizer(secret string, adminEmails []string) *Authorizer {
	admins := make(map[string]struct{}, len(adminEmails))
	for _, e := range adminEmails {
		if e = normalizeEmail(e); e != "" {
			admins[e] = struct{}{}
		}
	}
	return &Authorizer{secret: []byte(secret), admins: admins, now: time.Now}
}

func normalizeEmail(e string) string {
	return strings.ToLower(strings.TrimSpace(e))
}

// Authenticate verifies an HS256 token and returns the session principal.
func (a *Authorizer) Authenticate(token string) (domain.Principal, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return a.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(a.now))
	if err != nil || !parsed.Valid {
		return domain.Principal{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	userID := claims.userID()
	if userID == "" {
		return domain.Principal{}, fmt.Errorf("%w: missing user id", ErrInvalidToken)
	}
	return domain.Principal{
		UserID: userID,
		Email:  claims.Email,
		Role:   a.roleFor(claims.Email),
	}, nil
}

func (a *Authorizer) roleFor(email string) domain.Role {
	if _, ok := a.admins[normalizeEmail(email)]; ok {
		return domain.RoleAdmin
	}
	return domain.RoleCustomer
}

// Issue signs a token for a user. It backs local tooling and tests; production
// tokens come from the identity provider.
func (a *Authorizer) Issue(userID, email string, ttl time.Duration) (string, error) {
	now := a.now()
	claims := Claims{
		Email: email,
		UID:   userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
}

type ctxKey struct{}

// WithPrincipal stores p in ctx.
func WithPrincipal(ctx context.Context, p domain.Principal) context.Context {
	return context.WithValue(ctx, ctxKey{}, p)
}

// PrincipalFrom returns the principal stored by WithPrincipal.
func PrincipalFrom(ctx context.Context) (domain.Principal, bool) {
	p, ok := ctx.Value(ctxKey{}).(domain.Principal)
	return p, ok
}
