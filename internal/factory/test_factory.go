package factory

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/nohumanman/descenders-modding/internal/dependencies/mocks"
	"github.com/nohumanman/descenders-modding/internal/model"
	"github.com/nohumanman/descenders-modding/internal/notify"
	"github.com/nohumanman/descenders-modding/internal/storage/memory"
	"github.com/nohumanman/descenders-modding/internal/testutil"
)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock  *mocks.MockClock
	MockRandom *mocks.MockRandom
	Identities *StubIdentities
	Announced  *RecordingNotifier
}

// NewTestApp creates an App configured for testing with mocked dependencies
func NewTestApp() *TestApp {
	store := memory.New()
	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	mockRandom := mocks.NewMockRandom()
	identities := NewStubIdentities()
	notifier := &RecordingNotifier{}

	app := newWithDependencies(store, mockClock, mockRandom, identities, notifier, testutil.NopLogger())

	return &TestApp{
		App:        app,
		MockClock:  mockClock,
		MockRandom: mockRandom,
		Identities: identities,
		Announced:  notifier,
	}
}

// Authorize registers a credential for an identity and puts that identity on
// the allow-list
func (t *TestApp) Authorize(ctx context.Context, credential string, id model.IdentityID) error {
	t.Identities.Set(credential, id)
	return t.Storage.AddAuthorizedID(ctx, id)
}

// StubIdentities is an in-memory identity provider keyed by credential
type StubIdentities struct {
	mu      sync.Mutex
	byCred  map[string]model.Identity
	lookups int
	fail    bool
}

// NewStubIdentities creates an empty provider
func NewStubIdentities() *StubIdentities {
	return &StubIdentities{byCred: make(map[string]model.Identity)}
}

// Set maps a credential to an identity
func (s *StubIdentities) Set(credential string, id model.IdentityID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byCred[credential] = model.Identity{ID: id, Username: string(id)}
}

// SetProfile maps a credential to a full identity
func (s *StubIdentities) SetProfile(credential string, identity model.Identity) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byCred[credential] = identity
}

// SetFailing makes every subsequent lookup return an error
func (s *StubIdentities) SetFailing(fail bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fail = fail
}

// Lookups returns how many times the provider was consulted
func (s *StubIdentities) Lookups() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lookups
}

// LookupIdentity implements auth.IdentityProvider
func (s *StubIdentities) LookupIdentity(ctx context.Context, credential string) (*model.Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lookups++
	if s.fail {
		return nil, errors.New("identity provider unavailable")
	}
	identity, ok := s.byCred[credential]
	if !ok {
		return nil, errors.New("invalid credential")
	}
	return &identity, nil
}

// RecordingNotifier keeps every announced record
type RecordingNotifier struct {
	mu      sync.Mutex
	records []model.TimeRecord
}

var _ notify.Notifier = (*RecordingNotifier)(nil)

// NotifyTimeVerified implements notify.Notifier
func (n *RecordingNotifier) NotifyTimeVerified(ctx context.Context, rec *model.TimeRecord) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.records = append(n.records, *rec)
	return nil
}

// Records returns the announced records in order
func (n *RecordingNotifier) Records() []model.TimeRecord {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]model.TimeRecord, len(n.records))
	copy(out, n.records)
	return out
}
