package users

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"github.com/jrsteele09/go-portfolio/internal/errors"
)

// RoleResolver derives the caller's role from the stored credential.
type RoleResolver interface {
	Resolve(credential string) (Role, error)
}

// Claims carried by credentials issued for the admin panel.
type Claims struct {
	Role  string `json:"role"`
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// JWTRoleResolver reads the role claim from an HS256-signed credential.
type JWTRoleResolver struct {
	secret []byte
}

var _ RoleResolver = JWTRoleResolver{}

// NewJWTRoleResolver returns a resolver for secret. An empty secret resolves every
// credential to RoleUnknown.
func NewJWTRoleResolver(secret string) JWTRoleResolver {
	return JWTRoleResolver{secret: []byte(secret)}
}

func (j JWTRoleResolver) Resolve(credential string) (Role, error) {
	if len(j.secret) == 0 {
		return RoleUnknown, errors.Wrapf(errors.ErrMissingConfig, "jwt secret")
	}

	claims := &Claims{}
	_, err := jwt.ParseWithClaims(credential, claims, func(t *jwt.Token) (interface{}, error) {
		return j.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return RoleUnknown, fmt.Errorf("parse credential: %w", err)
	}
	return ParseRole(claims.Role)
}

// StaticRoleResolver maps every credential to one role.
type StaticRoleResolver Role

func (s StaticRoleResolver) Resolve(string) (Role, error) {
	return Role(s), nil
}

// SignCredential issues an HS256 credential with the given role. Used by tests and by
// login hubs that share the secret.
func SignCredential(secret string, role Role, claims jwt.RegisteredClaims) (string, error) {
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{Role: role.String(), RegisteredClaims: claims})
	return tok.SignedString([]byte(secret))
}
