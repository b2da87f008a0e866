// Package auth resolves the calling principal. Bearer tokens are HS256 JWTs
// whose subject is the user ID and whose "grants" claim lists role grants;
// the transport stores the verified principal on the request context where
// ContextProvider finds it.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/example/editorial/internal/apperr"
	"github.com/example/editorial/internal/core/access"
)

type principalKey struct{}

// WithPrincipal returns ctx signed in as p.
func WithPrincipal(ctx context.Context, p *access.Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFromContext returns the principal stored by WithPrincipal.
func PrincipalFromContext(ctx context.Context) *access.Principal {
	p, _ := ctx.Value(principalKey{}).(*access.Principal)
	return p
}

// ContextProvider implements secondary.IdentityProvider over the request
// context.
type ContextProvider struct{}

// CurrentPrincipal returns the signed-in principal, or nil.
func (ContextProvider) CurrentPrincipal(ctx context.Context) (*access.Principal, error) {
	return PrincipalFromContext(ctx), nil
}

// ParseGrant reads "role" (site-wide) or "role:journal".
func ParseGrant(raw string) (access.Grant, error) {
	rolePart, journal, _ := strings.Cut(strings.TrimSpace(raw), ":")
	role, err := access.ParseRole(rolePart)
	if err != nil {
		return access.Grant{}, err
	}
	return access.Grant{Role: role, JournalID: strings.TrimSpace(journal)}, nil
}

// ParseGrants parses every grant in raw.
func ParseGrants(raw []string) ([]access.Grant, error) {
	grants := make([]access.Grant, 0, len(raw))
	for _, r := range raw {
		if strings.TrimSpace(r) == "" {
			continue
		}
		g, err := ParseGrant(r)
		if err != nil {
			return nil, err
		}
		grants = append(grants, g)
	}
	return grants, nil
}

// FormatGrant is the inverse of ParseGrant.
func FormatGrant(g access.Grant) string {
	if g.Site() {
		return string(g.Role)
	}
	return string(g.Role) + ":" + g.JournalID
}

// Claims is the token payload.
type Claims struct {
	Grants []string `json:"grants,omitempty"`
	jwt.RegisteredClaims
}

// JWTProvider issues and verifies bearer tokens.
type JWTProvider struct {
	secret []byte
	issuer string
	now    func() time.Time
}

// JWTOption customizes a JWTProvider.
type JWTOption func(*JWTProvider)

// WithClock replaces time.Now for issuing and expiry checks.
func WithClock(now func() time.Time) JWTOption {
	return func(p *JWTProvider) { p.now = now }
}

// WithIssuer sets and requires the iss claim.
func WithIssuer(issuer string) JWTOption {
	return func(p *JWTProvider) { p.issuer = issuer }
}

// NewJWTProvider creates a provider signing with secret.
func NewJWTProvider(secret string, opts ...JWTOption) (*JWTProvider, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, errors.New("jwt secret is required")
	}
	p := &JWTProvider{secret: []byte(secret), issuer: "editorial", now: time.Now}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Issue signs a token for principal valid for ttl.
func (p *JWTProvider) Issue(principal *access.Principal, ttl time.Duration) (string, error) {
	if principal == nil || principal.UserID == "" {
		return "", apperr.New(apperr.ErrValidation, "token subject is required")
	}
	if ttl <= 0 {
		return "", apperr.New(apperr.ErrValidation, "token lifetime must be positive")
	}
	now := p.now()
	grants := make([]string, 0, len(principal.Grants))
	for _, g := range principal.Grants {
		grants = append(grants, FormatGrant(g))
	}
	claims := Claims{
		Grants: grants,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   principal.UserID,
			Issuer:    p.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(p.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify checks token and returns its principal. Every failure is
// Unauthorized.
func (p *JWTProvider) Verify(token string) (*access.Principal, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims,
		func(*jwt.Token) (any, error) { return p.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(p.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(p.now),
	)
	if err != nil || !parsed.Valid {
		return nil, apperr.Wrap(apperr.ErrUnauthorized, "verify token", "invalid or expired token", err)
	}
	if claims.Subject == "" {
		return nil, apperr.New(apperr.ErrUnauthorized, "token has no subject")
	}
	grants, err := ParseGrants(claims.Grants)
	if err != nil {
		return nil, apperr.Wrap(apperr.ErrUnauthorized, "verify token", "token carries an unknown grant", err)
	}
	return &access.Principal{UserID: claims.Subject, Grants: grants}, nil
}

// BearerToken extracts the token from an Authorization header value.
func BearerToken(header string) (string, bool) {
	const prefix = "Bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}
	token := strings.TrimSpace(header[len(prefix):])
	return token, token != ""
}
