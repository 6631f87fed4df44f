// Package identity consumes the external identity provider: it verifies the
// bearer tokens the provider issues and maps them onto the signed-in user
// the rest of the application works with.
package identity

import (
	"errors"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v4"

	"github.com/omnarkhede/volunteerhub/pkg/core/model"
)

// ErrInvalidToken is returned for tokens that fail verification for any
// reason (signature, expiry, issuer, shape).
var ErrInvalidToken = errors.New("invalid identity token")

// Claims are the provider-issued JWT claims we consume.
type Claims struct {
	Name     string `json:"name,omitempty"`
	Email    string `json:"email,omitempty"`
	ImageURL string `json:"picture,omitempty"`
	jwt.RegisteredClaims
}

// Verifier validates identity-provider tokens and answers admin checks.
type Verifier struct {
	signingKey  []byte
	issuer      string
	adminEmails map[string]bool
}

// NewVerifier creates a verifier for tokens signed with the shared key by
// the given issuer. adminEmails is the allow-list of privileged accounts.
func NewVerifier(signingKey, issuer string, adminEmails []string) *Verifier {
	admins := make(map[string]bool, len(adminEmails))
	for _, email := range adminEmails {
		admins[strings.ToLower(strings.TrimSpace(email))] = true
	}
	return &Verifier{
		signingKey:  []byte(signingKey),
		issuer:      issuer,
		adminEmails: admins,
	}
}

// Verify parses and validates a bearer token, returning the signed-in user.
func (v *Verifier) Verify(tokenString string) (model.User, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return v.signingKey, nil
	})
	if err != nil {
		return model.User{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return model.User{}, ErrInvalidToken
	}
	if v.issuer != "" && claims.Issuer != v.issuer {
		return model.User{}, fmt.Errorf("%w: unexpected issuer %q", ErrInvalidToken, claims.Issuer)
	}
	if claims.Subject == "" {
		return model.User{}, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}

	return model.User{
		ID:       claims.Subject,
		Name:     claims.Name,
		Email:    claims.Email,
		ImageURL: claims.ImageURL,
	}, nil
}

// IsAdmin reports whether the user's email is on the admin allow-list.
func (v *Verifier) IsAdmin(user model.User) bool {
	if user.Email == "" {
		return false
	}
	return v.adminEmails[strings.ToLower(user.Email)]
}
