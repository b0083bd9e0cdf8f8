package notify

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/suite"

	"github.com/nohumanman/descenders-modding/internal/model"
	"github.com/nohumanman/descenders-modding/internal/testutil"
)

// redirectTransport sends every request to target regardless of host
type redirectTransport struct {
	target *url.URL
}

func (t redirectTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.URL.Scheme = t.target.Scheme
	req.URL.Host = t.target.Host
	return http.DefaultTransport.RoundTrip(req)
}

type DiscordSuite struct {
	suite.Suite
	server   *httptest.Server
	status   int
	gotPath  string
	gotBody  map[string]any
	notifier *Discord
}

func TestDiscordSuite(t *testing.T) {
	suite.Run(t, new(DiscordSuite))
}

func (s *DiscordSuite) SetupTest() {
	s.status = http.StatusNoContent
	s.gotPath = ""
	s.gotBody = nil
	s.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.gotPath = r.URL.Path
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &s.gotBody)
		w.WriteHeader(s.status)
	}))

	target, err := url.Parse(s.server.URL)
	s.Require().NoError(err)

	session, err := discordgo.New("")
	s.Require().NoError(err)
	session.Client = &http.Client{Transport: redirectTransport{target: target}}
	session.MaxRestRetries = 0

	s.notifier = NewDiscordWithSession(session, DiscordConfig{
		WebhookID:    "123",
		WebhookToken: "secret",
		TimeURLBase:  "https://modkit.nohumanman.com/",
	}, testutil.NopLogger())
}

func (s *DiscordSuite) TearDownTest() {
	s.server.Close()
}

func (s *DiscordSuite) TestNotifyPostsToWebhook() {
	rec := &model.TimeRecord{ID: "t1", PlayerName: "Alice", TotalTime: 83.412, TrailName: "Igloo Bypass"}

	s.Require().NoError(s.notifier.NotifyTimeVerified(context.Background(), rec))

	s.Equal("/api/v"+discordgo.APIVersion+"/webhooks/123/secret", s.gotPath)
	s.Equal("[Time](https://modkit.nohumanman.com/time/t1) by Alice of 83.412 on Igloo Bypass is verified.", s.gotBody["content"])
}

func (s *DiscordSuite) TestNotifyReturnsWebhookFailure() {
	s.status = http.StatusNotFound
	rec := &model.TimeRecord{ID: "t1"}

	s.Error(s.notifier.NotifyTimeVerified(context.Background(), rec))
}

func (s *DiscordSuite) TestNewDiscordRequiresWebhook() {
	_, err := NewDiscord(DiscordConfig{}, testutil.NopLogger())
	s.Error(err)
}

func TestVerifiedMessageFormatsWholeSeconds(t *testing.T) {
	msg := VerifiedMessage("https://example.com", &model.TimeRecord{ID: "x", PlayerName: "Bob", TotalTime: 90, TrailName: "Slab"})
	if msg != "[Time](https://example.com/time/x) by Bob of 90 on Slab is verified." {
		t.Fatalf("unexpected message %q", msg)
	}
}
