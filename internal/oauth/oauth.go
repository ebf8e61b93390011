package oauth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/marketpulse/marketpulse/backend/go-services/internal/users"
	"golang.org/x/oauth2"
)

var ErrNotConfigured = errors.New("oauth provider not configured")

// Provider is one sign-in backend (Google, GitHub).
type Provider interface {
	// AuthURL is the consent page the browser is sent to.
	AuthURL(state string) string
	// Identity exchanges an authorization code and describes the signed-in user.
	Identity(ctx context.Context, code string) (users.Identity, error)
}

// getJSON fetches url with the token's authenticated client and decodes the body into v.
func getJSON(ctx context.Context, conf *oauth2.Config, tok *oauth2.Token, url string, v interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	resp, err := conf.Client(ctx, tok).Do(req)
	if err != nil {
		return fmt.Errorf("get %s: %w", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("get %s: status %d: %s", url, resp.StatusCode, b)
	}
	return json.NewDecoder(resp.Body).Decode(v)
}
