package session

import (
	"context"
	"fmt"
	"strings"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"

	"github.com/jrsteele09/go-portfolio/authurl"
)

// OAuth2Exchanger trades authorization codes for access tokens at the login hub's token
// endpoint and, when a verifier is set, verifies id_tokens before accepting them.
// Token and access token credentials are stored as received.
type OAuth2Exchanger struct {
	config   *oauth2.Config
	verifier *oidc.IDTokenVerifier
}

var _ Exchanger = (*OAuth2Exchanger)(nil)

// NewOAuth2Exchanger builds an exchanger for the hub at authBaseURL. verifier may be nil.
func NewOAuth2Exchanger(authBaseURL, clientID, clientSecret, redirectURI string, verifier *oidc.IDTokenVerifier) *OAuth2Exchanger {
	base := strings.TrimRight(authBaseURL, "/")
	return &OAuth2Exchanger{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURI,
			Endpoint: oauth2.Endpoint{
				AuthURL:  base + authurl.LoginPath,
				TokenURL: base + "/oauth2/token",
			},
		},
		verifier: verifier,
	}
}

// NewOIDCVerifier discovers the issuer and returns an id_token verifier for clientID.
func NewOIDCVerifier(ctx context.Context, issuer, clientID string) (*oidc.IDTokenVerifier, error) {
	provider, err := oidc.NewProvider(ctx, issuer)
	if err != nil {
		return nil, fmt.Errorf("failed to create OIDC provider: %w", err)
	}
	return provider.Verifier(&oidc.Config{ClientID: clientID}), nil
}

func (e *OAuth2Exchanger) Exchange(ctx context.Context, cred authurl.Credential) (string, error) {
	switch cred.Kind {
	case authurl.KindAuthorizationCode:
		token, err := e.config.Exchange(ctx, cred.Value)
		if err != nil {
			return "", fmt.Errorf("token exchange failed: %w", err)
		}
		if rawIDToken, ok := token.Extra("id_token").(string); ok && e.verifier != nil {
			if _, err := e.verifier.Verify(ctx, rawIDToken); err != nil {
				return "", fmt.Errorf("ID token verification failed: %w", err)
			}
		}
		return token.AccessToken, nil
	case authurl.KindIDToken:
		if e.verifier != nil {
			if _, err := e.verifier.Verify(ctx, cred.Value); err != nil {
				return "", fmt.Errorf("ID token verification failed: %w", err)
			}
		}
		return cred.Value, nil
	case authurl.KindToken, authurl.KindAccessToken:
		return cred.Value, nil
	default:
		return "", fmt.Errorf("unsupported credential kind %d", cred.Kind)
	}
}
