package factory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/nohumanman/descenders-modding/internal/model"
)

type recordingConn struct {
	mu   sync.Mutex
	sent []string
}

func (c *recordingConn) Send(ctx context.Context, message string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sent = append(c.sent, message)
	return nil
}

func (c *recordingConn) Sent() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.sent...)
}

type IntegrationSuite struct {
	suite.Suite
	app *TestApp
	ctx context.Context
}

func TestIntegrationSuite(t *testing.T) {
	suite.Run(t, new(IntegrationSuite))
}

func (s *IntegrationSuite) SetupTest() {
	s.app = NewTestApp()
	s.ctx = context.Background()
}

func (s *IntegrationSuite) connect(id, name string) *recordingConn {
	conn := &recordingConn{}
	s.app.Registry.Add(model.NewPlayer(model.PlayerID(id), name, conn, s.app.MockClock.Now()))
	return conn
}

// Test: an allow-listed operator points one player at another
func (s *IntegrationSuite) TestAuthorizedOperatorSpectates() {
	s.Require().NoError(s.app.Authorize(s.ctx, "tok-op", "op1"))
	s.connect("p1", "Alice")
	s.connect("p2", "Bob")

	verdict, err := s.app.Resolver.Resolve(s.ctx, "tok-op")
	s.Require().NoError(err)
	s.Require().Equal(model.VerdictAuthorized, verdict)

	s.Require().NoError(s.app.Registry.SetSpectate("p1", "Alice", "p2"))

	monitored, ok := s.app.Registry.GetMonitored()
	s.Require().True(ok)
	s.Equal(model.PlayerID("p2"), monitored.ID)

	spectated, ok := s.app.Registry.Spectated()
	s.Require().True(ok)
	s.Equal(model.PlayerID("p2"), spectated.ID)
}

// Test: removing an identity from the allow-list takes effect without
// another provider lookup
func (s *IntegrationSuite) TestAllowListRemovalIsImmediate() {
	s.Require().NoError(s.app.Authorize(s.ctx, "tok-op", "op1"))

	verdict, err := s.app.Resolver.Resolve(s.ctx, "tok-op")
	s.Require().NoError(err)
	s.Equal(model.VerdictAuthorized, verdict)

	s.Require().NoError(s.app.Storage.RemoveAuthorizedID(s.ctx, "op1"))

	verdict, err = s.app.Resolver.Resolve(s.ctx, "tok-op")
	s.Require().NoError(err)
	s.Equal(model.VerdictUnauthorized, verdict)
	s.Equal(1, s.app.Identities.Lookups())
}

// Test: a cached identity survives a provider outage
func (s *IntegrationSuite) TestCachedIdentitySurvivesProviderOutage() {
	s.Require().NoError(s.app.Authorize(s.ctx, "tok-op", "op1"))
	_, err := s.app.Resolver.Resolve(s.ctx, "tok-op")
	s.Require().NoError(err)

	s.app.Identities.SetFailing(true)

	verdict, err := s.app.Resolver.Resolve(s.ctx, "tok-op")
	s.Require().NoError(err)
	s.Equal(model.VerdictAuthorized, verdict)

	verdict, err = s.app.Resolver.Resolve(s.ctx, "tok-new")
	s.ErrorIs(err, model.ErrIdentityLookupFailed)
	s.Equal(model.VerdictUnknown, verdict)
}

// Test: commands reach the player and SET_BIKE updates the recorded bike
func (s *IntegrationSuite) TestCommandUpdatesBike() {
	conn := s.connect("p1", "Alice")

	s.Require().NoError(s.app.Commands.Send(s.ctx, "p1", "SET_BIKE|1"))

	s.Equal([]string{"SET_BIKE|1"}, conn.Sent())
	p, err := s.app.Registry.FindByID("p1")
	s.Require().NoError(err)
	s.Equal(model.BikeDownhill, p.BikeType())
}

// Test: a submitted run is verified, stamped and announced
func (s *IntegrationSuite) TestSubmitVerifyAnnounce() {
	s.app.MockRandom.QueueString("run1")

	rec, err := s.app.Records.Submit(s.ctx, &model.TimeRecord{
		PlayerID:   "p1",
		PlayerName: "Alice",
		TrailName:  " Igloo Bobsleigh ",
		TotalTime:  61.25,
	})
	s.Require().NoError(err)
	s.Equal(model.TimeID("run1"), rec.ID)
	s.Equal("Igloo Bobsleigh", rec.TrailName)

	s.app.MockClock.Advance(time.Hour)
	verified, err := s.app.Records.Verify(s.ctx, "run1")
	s.Require().NoError(err)
	s.True(verified.Verified)
	s.Equal(s.app.MockClock.Now(), verified.VerifiedAt)

	announced := s.app.Announced.Records()
	s.Require().Len(announced, 1)
	s.Equal(model.TimeID("run1"), announced[0].ID)
}
