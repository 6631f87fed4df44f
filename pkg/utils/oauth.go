package utils

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/omnarkhede/volunteerhub/internal/config"
)

var (
	tokenCache   *oauth2.Token
	tokenCacheMu sync.Mutex
)

// GetOAuthConfig creates a client-credentials config for the identity
// provider from the OAuth client configuration. The CLI uses this to obtain
// a token without an interactive browser flow.
func GetOAuthConfig(oauthCfg *config.OAuthClientConfig) *clientcredentials.Config {
	return &clientcredentials.Config{
		ClientID:     oauthCfg.ClientID,
		ClientSecret: oauthCfg.ClientSecret,
		TokenURL:     oauthCfg.TokenURI,
		Scopes:       oauthCfg.Scopes,
	}
}

// FetchIdentityToken returns a valid access token for the identity provider,
// reusing a cached token while it remains valid.
func FetchIdentityToken(ctx context.Context, oauthCfg *config.OAuthClientConfig) (string, error) {
	tokenCacheMu.Lock()
	defer tokenCacheMu.Unlock()

	if tokenCache.Valid() {
		return tokenCache.AccessToken, nil
	}

	token, err := GetOAuthConfig(oauthCfg).Token(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to fetch identity token: %w", err)
	}

	tokenCache = token
	return token.AccessToken, nil
}
