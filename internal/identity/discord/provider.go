// Package discord resolves dashboard credentials against the Discord API.
package discord

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/bwmarrin/discordgo"
	"golang.org/x/oauth2"

	"github.com/nohumanman/descenders-modding/internal/model"
)

// Config holds the Discord OAuth application settings
type Config struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string

	// APIBaseURL is the REST root, e.g. https://discord.com/api
	APIBaseURL string

	Scopes []string
}

// DefaultConfig returns the Discord endpoints with the identify scope
func DefaultConfig() Config {
	return Config{
		APIBaseURL: "https://discord.com/api",
		Scopes:     []string{"identify"},
	}
}

// Provider performs the OAuth code exchange and identity lookups.
// The session credential it hands out is the Discord access token.
type Provider struct {
	oauth      *oauth2.Config
	apiBase    string
	client     *http.Client
	restClient *http.Client
}

// New creates a new Provider
func New(cfg Config) *Provider {
	base := strings.TrimRight(cfg.APIBaseURL, "/")
	if base == "" {
		base = DefaultConfig().APIBaseURL
	}
	scopes := cfg.Scopes
	if len(scopes) == 0 {
		scopes = DefaultConfig().Scopes
	}
	return &Provider{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       scopes,
			Endpoint: oauth2.Endpoint{
				AuthURL:   base + "/oauth2/authorize",
				TokenURL:  base + "/oauth2/token",
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		apiBase:    base,
		client:     http.DefaultClient,
		restClient: newRESTClient(http.DefaultClient, base),
	}
}

// WithHTTPClient sets the client used for token exchange and API calls
func (p *Provider) WithHTTPClient(c *http.Client) *Provider {
	p.client = c
	p.restClient = newRESTClient(c, p.apiBase)
	return p
}

// AuthCodeURL returns the Discord consent page URL for the given state
func (p *Provider) AuthCodeURL(state string) string {
	return p.oauth.AuthCodeURL(state)
}

// Exchange trades an authorization code for a session credential
func (p *Provider) Exchange(ctx context.Context, code string) (string, error) {
	tok, err := p.oauth.Exchange(p.clientContext(ctx), code)
	if err != nil {
		return "", fmt.Errorf("exchange code: %w", err)
	}
	if tok.AccessToken == "" {
		return "", fmt.Errorf("exchange code: empty access token")
	}
	return tok.AccessToken, nil
}

// LookupIdentity returns the Discord account that owns credential
func (p *Provider) LookupIdentity(ctx context.Context, credential string) (*model.Identity, error) {
	session, err := p.session(credential)
	if err != nil {
		return nil, err
	}

	user, err := session.User("@me", discordgo.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("get current user: %w", err)
	}

	raw := make(map[string]any)
	if data, err := json.Marshal(user); err == nil {
		_ = json.Unmarshal(data, &raw)
	}

	return &model.Identity{
		ID:       model.IdentityID(user.ID),
		Username: user.Username,
		Email:    user.Email,
		Raw:      raw,
	}, nil
}

// SteamID returns the Steam account linked to the Discord user, or "" if none
func (p *Provider) SteamID(ctx context.Context, credential string) (string, error) {
	session, err := p.session(credential)
	if err != nil {
		return "", err
	}

	conns, err := session.UserConnections(discordgo.WithContext(ctx))
	if err != nil {
		return "", fmt.Errorf("get user connections: %w", err)
	}
	for _, c := range conns {
		if c != nil && c.Type == "steam" {
			return c.ID, nil
		}
	}
	return "", nil
}

// session returns a REST session acting as the user behind credential
func (p *Provider) session(credential string) (*discordgo.Session, error) {
	session, err := discordgo.New("Bearer " + credential)
	if err != nil {
		return nil, fmt.Errorf("create discord session: %w", err)
	}
	session.Client = p.restClient
	return session, nil
}

// apiRewriter points discordgo's fixed REST endpoints at another API root
type apiRewriter struct {
	base string
	next http.RoundTripper
}

func (t apiRewriter) RoundTrip(req *http.Request) (*http.Response, error) {
	raw := req.URL.String()
	if !strings.HasPrefix(raw, discordgo.EndpointAPI) {
		return t.next.RoundTrip(req)
	}

	u, err := url.Parse(t.base + "/" + strings.TrimPrefix(raw, discordgo.EndpointAPI))
	if err != nil {
		return nil, err
	}
	out := req.Clone(req.Context())
	out.URL = u
	out.Host = u.Host
	return t.next.RoundTrip(out)
}

// newRESTClient wraps c so REST calls reach apiBase. The public Discord API
// keeps discordgo's versioned endpoints.
func newRESTClient(c *http.Client, apiBase string) *http.Client {
	if apiBase == DefaultConfig().APIBaseURL {
		return c
	}
	next := c.Transport
	if next == nil {
		next = http.DefaultTransport
	}
	return &http.Client{
		Transport: apiRewriter{base: apiBase, next: next},
		Timeout:   c.Timeout,
	}
}

func (p *Provider) clientContext(ctx context.Context) context.Context {
	return context.WithValue(ctx, oauth2.HTTPClient, p.client)
}
