package discord

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/suite"

	"github.com/nohumanman/descenders-modding/internal/model"
)

type ProviderSuite struct {
	suite.Suite
	server      *httptest.Server
	connections []map[string]string
	provider    *Provider
}

func TestProviderSuite(t *testing.T) {
	suite.Run(t, new(ProviderSuite))
}

func (s *ProviderSuite) SetupTest() {
	s.connections = []map[string]string{
		{"type": "twitch", "id": "tw1"},
		{"type": "steam", "id": "76561198000000001"},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/oauth2/token", func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		if r.Form.Get("code") != "good-code" {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"invalid_grant"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"tok-1","token_type":"Bearer","expires_in":604800}`))
	})
	mux.HandleFunc("/api/users/@me", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok-1" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{
			"id":       "80351110224678912",
			"username": "nelly",
			"email":    "nelly@example.com",
		})
	})
	mux.HandleFunc("/api/users/@me/connections", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok-1" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_ = json.NewEncoder(w).Encode(s.connections)
	})
	s.server = httptest.NewServer(mux)

	s.provider = New(Config{
		ClientID:     "client",
		ClientSecret: "secret",
		RedirectURL:  "https://split-timer.example.com/callback",
		APIBaseURL:   s.server.URL + "/api/",
	}).WithHTTPClient(s.server.Client())
}

func (s *ProviderSuite) TearDownTest() {
	s.server.Close()
}

func (s *ProviderSuite) TestAuthCodeURL() {
	u, err := url.Parse(s.provider.AuthCodeURL("state-1"))
	s.Require().NoError(err)
	s.Equal("/api/oauth2/authorize", u.Path)
	s.Equal("client", u.Query().Get("client_id"))
	s.Equal("state-1", u.Query().Get("state"))
	s.Equal("identify", u.Query().Get("scope"))
	s.Equal("https://split-timer.example.com/callback", u.Query().Get("redirect_uri"))
}

func (s *ProviderSuite) TestExchange() {
	cred, err := s.provider.Exchange(context.Background(), "good-code")
	s.Require().NoError(err)
	s.Equal("tok-1", cred)
}

func (s *ProviderSuite) TestExchangeRejected() {
	_, err := s.provider.Exchange(context.Background(), "bad-code")
	s.Error(err)
}

func (s *ProviderSuite) TestLookupIdentity() {
	identity, err := s.provider.LookupIdentity(context.Background(), "tok-1")
	s.Require().NoError(err)
	s.Equal(model.IdentityID("80351110224678912"), identity.ID)
	s.Equal("nelly", identity.Username)
	s.Equal("nelly@example.com", identity.Email)
	s.Equal("nelly", identity.Raw["username"])
}

func (s *ProviderSuite) TestLookupIdentityRejectedCredential() {
	_, err := s.provider.LookupIdentity(context.Background(), "expired")
	s.Error(err)
}

func (s *ProviderSuite) TestLookupIdentityProviderDown() {
	s.server.Close()
	_, err := s.provider.LookupIdentity(context.Background(), "tok-1")
	s.Error(err)
}

func (s *ProviderSuite) TestSteamID() {
	id, err := s.provider.SteamID(context.Background(), "tok-1")
	s.Require().NoError(err)
	s.Equal("76561198000000001", id)
}

func (s *ProviderSuite) TestSteamIDNoneLinked() {
	s.connections = nil
	id, err := s.provider.SteamID(context.Background(), "tok-1")
	s.Require().NoError(err)
	s.Equal("", id)
}

func (s *ProviderSuite) TestDefaultBaseKeepsDiscordEndpoints() {
	c := &http.Client{}
	s.Same(c, newRESTClient(c, DefaultConfig().APIBaseURL))
}

func (s *ProviderSuite) TestRewriterMapsVersionedEndpoints() {
	var seen string
	next := roundTripFunc(func(r *http.Request) (*http.Response, error) {
		seen = r.URL.String()
		return &http.Response{StatusCode: http.StatusOK, Body: http.NoBody, Request: r}, nil
	})
	rt := apiRewriter{base: "http://127.0.0.1:9999/api", next: next}

	req := httptest.NewRequest(http.MethodGet, discordgo.EndpointUser("@me"), nil)
	_, err := rt.RoundTrip(req)
	s.Require().NoError(err)
	s.Equal("http://127.0.0.1:9999/api/users/@me", seen)
	s.Equal(discordgo.EndpointUser("@me"), req.URL.String())

	other := httptest.NewRequest(http.MethodGet, "https://cdn.discordapp.com/avatars/1/a.png", nil)
	_, err = rt.RoundTrip(other)
	s.Require().NoError(err)
	s.Equal("https://cdn.discordapp.com/avatars/1/a.png", seen)
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }
