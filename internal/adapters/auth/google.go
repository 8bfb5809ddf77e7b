package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"valentine/internal/domain"
)

const userinfoEndpoint = "https://www.googleapis.com/oauth2/v2/userinfo"

// googleUser is the portion of the Google userinfo response we care about.
type googleUser struct {
	ID      string `json:"id"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

type googleProvider struct {
	config *oauth2.Config
}

// NewGoogleProvider returns an IdentityProvider backed by Google's OAuth 2.0
// authorization code flow. callbackURL must match the redirect URI registered
// in the Google console exactly.
func NewGoogleProvider(clientID, clientSecret, callbackURL string) domain.IdentityProvider {
	return &googleProvider{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  callbackURL,
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     google.Endpoint,
		},
	}
}

// AuthURL returns the Google authorization URL. The state is verified against
// a cookie on callback to prevent CSRF.
func (p *googleProvider) AuthURL(state string) string {
	return p.config.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

// Exchange trades the callback code for an access token server-to-server and
// fetches the user's profile from the userinfo endpoint.
func (p *googleProvider) Exchange(ctx context.Context, code string) (*domain.Profile, error) {
	token, err := p.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange oauth code: %w", err)
	}

	client := p.config.Client(ctx, token)
	resp, err := client.Get(userinfoEndpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch userinfo: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("userinfo endpoint returned status %d", resp.StatusCode)
	}

	var gu googleUser
	if err := json.NewDecoder(resp.Body).Decode(&gu); err != nil {
		return nil, fmt.Errorf("failed to decode userinfo response: %w", err)
	}
	if gu.Email == "" {
		return nil, fmt.Errorf("userinfo response has no email")
	}

	return &domain.Profile{
		Subject:   gu.ID,
		Email:     gu.Email,
		Name:      gu.Name,
		AvatarURL: gu.Picture,
	}, nil
}
