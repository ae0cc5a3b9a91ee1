// Package oidc verifies admin ID tokens issued by the hosted auth provider.
package oidc

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/folio/portfolio/backend/go-services/pkg/middleware"
)

// ErrNotAdmin means the token is valid but its email is not on the admin list.
var ErrNotAdmin = errors.New("account is not an administrator")

type Verifier struct {
	verifier *oidc.IDTokenVerifier
	// lower-cased emails; empty admits every subject the provider signs for
	admins map[string]struct{}
}

// NewVerifier discovers issuer and binds the verifier to clientID.
func NewVerifier(ctx context.Context, issuer, clientID string, adminEmails []string) (*Verifier, error) {
	provider, err := oidc.NewProvider(ctx, issuer)
	if err != nil {
		return nil, fmt.Errorf("discover OIDC provider %s: %w", issuer, err)
	}
	return newVerifier(provider.Verifier(&oidc.Config{ClientID: clientID}), adminEmails), nil
}

func newVerifier(iv *oidc.IDTokenVerifier, adminEmails []string) *Verifier {
	v := &Verifier{verifier: iv, admins: make(map[string]struct{}, len(adminEmails))}
	for _, e := range adminEmails {
		if e = strings.ToLower(strings.TrimSpace(e)); e != "" {
			v.admins[e] = struct{}{}
		}
	}
	return v
}

func (v *Verifier) Verify(ctx context.Context, raw string) (middleware.Token, error) {
	idToken, err := v.verifier.Verify(ctx, raw)
	if err != nil {
		return nil, err
	}
	if len(v.admins) == 0 {
		return idToken, nil
	}
	var claims struct {
		Email    string `json:"email"`
		Verified *bool  `json:"email_verified"`
	}
	if err := idToken.Claims(&claims); err != nil {
		return nil, fmt.Errorf("read token claims: %w", err)
	}
	if claims.Verified != nil && !*claims.Verified {
		return nil, fmt.Errorf("%w: email %q is not verified", ErrNotAdmin, claims.Email)
	}
	if _, ok := v.admins[strings.ToLower(claims.Email)]; !ok {
		return nil, ErrNotAdmin
	}
	return idToken, nil
}
