package auth

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"github.com/nohumanman/descenders-modding/internal/model"
	"github.com/nohumanman/descenders-modding/internal/services/auth/mocks"
	"github.com/nohumanman/descenders-modding/internal/testutil"
)

type ResolverSuite struct {
	suite.Suite
	mockCtrl     *gomock.Controller
	mockProvider *mocks.MockIdentityProvider
	mockAllow    *mocks.MockAllowList
	cache        *IdentityCache
	resolver     *Resolver
	ctx          context.Context
}

func TestResolverSuite(t *testing.T) {
	suite.Run(t, new(ResolverSuite))
}

func (s *ResolverSuite) SetupTest() {
	s.mockCtrl = gomock.NewController(s.T())
	s.mockProvider = mocks.NewMockIdentityProvider(s.mockCtrl)
	s.mockAllow = mocks.NewMockAllowList(s.mockCtrl)
	s.cache = NewIdentityCache()
	s.resolver = NewResolver(s.cache, s.mockProvider, s.mockAllow, testutil.NopLogger())
	s.ctx = context.Background()
}

func (s *ResolverSuite) TearDownTest() {
	s.mockCtrl.Finish()
}

func (s *ResolverSuite) TestColdCacheAuthorized() {
	s.mockProvider.EXPECT().
		LookupIdentity(gomock.Any(), "tokA").
		Return(&model.Identity{ID: "u1"}, nil).
		Times(1)
	s.mockAllow.EXPECT().
		GetAuthorizedIDs(gomock.Any()).
		Return([]model.IdentityID{"u1"}, nil).
		Times(1)

	verdict, err := s.resolver.Resolve(s.ctx, "tokA")
	s.Require().NoError(err)
	s.Equal(model.VerdictAuthorized, verdict)

	id, ok := s.cache.Get("tokA")
	s.Require().True(ok)
	s.Equal(model.IdentityID("u1"), id)
}

func (s *ResolverSuite) TestWarmCacheSkipsProvider() {
	s.cache.Put("tokA", "u1")
	s.mockAllow.EXPECT().
		GetAuthorizedIDs(gomock.Any()).
		Return([]model.IdentityID{"u1"}, nil).
		Times(2)

	for i := 0; i < 2; i++ {
		verdict, err := s.resolver.Resolve(s.ctx, "tokA")
		s.Require().NoError(err)
		s.Equal(model.VerdictAuthorized, verdict)
	}
}

func (s *ResolverSuite) TestSecondCallUsesCache() {
	s.mockProvider.EXPECT().
		LookupIdentity(gomock.Any(), "tokA").
		Return(&model.Identity{ID: "u1"}, nil).
		Times(1)
	s.mockAllow.EXPECT().
		GetAuthorizedIDs(gomock.Any()).
		Return([]model.IdentityID{"u1"}, nil).
		Times(2)

	for i := 0; i < 2; i++ {
		verdict, err := s.resolver.Resolve(s.ctx, "tokA")
		s.Require().NoError(err)
		s.Equal(model.VerdictAuthorized, verdict)
	}
}

func (s *ResolverSuite) TestNotOnAllowList() {
	s.mockProvider.EXPECT().
		LookupIdentity(gomock.Any(), "tokB").
		Return(&model.Identity{ID: "u2"}, nil)
	s.mockAllow.EXPECT().
		GetAuthorizedIDs(gomock.Any()).
		Return([]model.IdentityID{"u1"}, nil)

	verdict, err := s.resolver.Resolve(s.ctx, "tokB")
	s.Require().NoError(err)
	s.Equal(model.VerdictUnauthorized, verdict)
}

func (s *ResolverSuite) TestEmptyAllowList() {
	s.cache.Put("tokA", "u1")
	s.mockAllow.EXPECT().
		GetAuthorizedIDs(gomock.Any()).
		Return(nil, nil)

	verdict, err := s.resolver.Resolve(s.ctx, "tokA")
	s.Require().NoError(err)
	s.Equal(model.VerdictUnauthorized, verdict)
}

func (s *ResolverSuite) TestAllowListChangeFlipsVerdictWithoutCacheChange() {
	s.cache.Put("tokA", "u1")
	gomock.InOrder(
		s.mockAllow.EXPECT().GetAuthorizedIDs(gomock.Any()).Return([]model.IdentityID{"u1"}, nil),
		s.mockAllow.EXPECT().GetAuthorizedIDs(gomock.Any()).Return([]model.IdentityID{}, nil),
	)

	verdict, err := s.resolver.Resolve(s.ctx, "tokA")
	s.Require().NoError(err)
	s.Equal(model.VerdictAuthorized, verdict)

	verdict, err = s.resolver.Resolve(s.ctx, "tokA")
	s.Require().NoError(err)
	s.Equal(model.VerdictUnauthorized, verdict)

	s.Equal(1, s.cache.Len())
}

func (s *ResolverSuite) TestBlankCredentialIsUnknown() {
	for _, cred := range []string{"", "   "} {
		verdict, err := s.resolver.Resolve(s.ctx, cred)
		s.NoError(err)
		s.Equal(model.VerdictUnknown, verdict)
	}
	s.Equal(0, s.cache.Len())
}

func (s *ResolverSuite) TestProviderFailureIsUnknownWithError() {
	s.mockProvider.EXPECT().
		LookupIdentity(gomock.Any(), "tokC").
		Return(nil, errors.New("connection refused"))

	verdict, err := s.resolver.Resolve(s.ctx, "tokC")
	s.ErrorIs(err, model.ErrIdentityLookupFailed)
	s.Equal(model.VerdictUnknown, verdict)

	_, ok := s.cache.Get("tokC")
	s.False(ok)
}

func (s *ResolverSuite) TestProviderEmptyIdentityIsLookupFailure() {
	s.mockProvider.EXPECT().
		LookupIdentity(gomock.Any(), "tokC").
		Return(&model.Identity{}, nil)

	verdict, err := s.resolver.Resolve(s.ctx, "tokC")
	s.ErrorIs(err, model.ErrIdentityLookupFailed)
	s.Equal(model.VerdictUnknown, verdict)
	s.Equal(0, s.cache.Len())
}

func (s *ResolverSuite) TestAllowListFailureIsUnknownWithError() {
	s.cache.Put("tokA", "u1")
	s.mockAllow.EXPECT().
		GetAuthorizedIDs(gomock.Any()).
		Return(nil, errors.New("redis down"))

	verdict, err := s.resolver.Resolve(s.ctx, "tokA")
	s.ErrorIs(err, model.ErrAllowListUnavailable)
	s.Equal(model.VerdictUnknown, verdict)
}

func (s *ResolverSuite) TestIdentifyDoesNotReadAllowList() {
	s.mockProvider.EXPECT().
		LookupIdentity(gomock.Any(), "tokA").
		Return(&model.Identity{ID: "u1"}, nil)

	id, err := s.resolver.Identify(s.ctx, "tokA")
	s.Require().NoError(err)
	s.Equal(model.IdentityID("u1"), id)
}

func (s *ResolverSuite) TestConcurrentMissesShareOneLookup() {
	release := make(chan struct{})
	s.mockProvider.EXPECT().
		LookupIdentity(gomock.Any(), "tokA").
		DoAndReturn(func(ctx context.Context, credential string) (*model.Identity, error) {
			<-release
			return &model.Identity{ID: "u1"}, nil
		}).
		Times(1)
	s.mockAllow.EXPECT().
		GetAuthorizedIDs(gomock.Any()).
		Return([]model.IdentityID{"u1"}, nil).
		AnyTimes()

	const n = 8
	var wg sync.WaitGroup
	verdicts := make([]model.Verdict, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			v, err := s.resolver.Resolve(s.ctx, "tokA")
			s.NoError(err)
			verdicts[i] = v
		}(i)
	}

	// Give the goroutines time to pile up on the in-flight lookup
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	for _, v := range verdicts {
		s.Equal(model.VerdictAuthorized, v)
	}
}

func (s *ResolverSuite) TestCancelledCallerDoesNotFailSharedLookup() {
	started := make(chan struct{})
	release := make(chan struct{})
	s.mockProvider.EXPECT().
		LookupIdentity(gomock.Any(), "tokA").
		DoAndReturn(func(ctx context.Context, credential string) (*model.Identity, error) {
			close(started)
			<-release
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			return &model.Identity{ID: "u1"}, nil
		}).
		Times(1)
	s.mockAllow.EXPECT().
		GetAuthorizedIDs(gomock.Any()).
		Return([]model.IdentityID{"u1"}, nil)

	ctxA, cancelA := context.WithCancel(s.ctx)
	errA := make(chan error, 1)
	go func() {
		_, err := s.resolver.Resolve(ctxA, "tokA")
		errA <- err
	}()
	<-started

	type result struct {
		verdict model.Verdict
		err     error
	}
	resB := make(chan result, 1)
	go func() {
		v, err := s.resolver.Resolve(s.ctx, "tokA")
		resB <- result{v, err}
	}()

	// Let caller B join the in-flight lookup before A goes away
	time.Sleep(50 * time.Millisecond)
	cancelA()
	s.ErrorIs(<-errA, context.Canceled)

	close(release)
	b := <-resB
	s.Require().NoError(b.err)
	s.Equal(model.VerdictAuthorized, b.verdict)

	id, ok := s.cache.Get("tokA")
	s.Require().True(ok)
	s.Equal(model.IdentityID("u1"), id)
}

func (s *ResolverSuite) TestLookupReturnsProfileAndFillsCache() {
	s.mockProvider.EXPECT().
		LookupIdentity(gomock.Any(), "tokA").
		Return(&model.Identity{ID: "u1", Username: "rider", Email: "rider@example.com"}, nil).
		Times(1)
	s.mockAllow.EXPECT().
		GetAuthorizedIDs(gomock.Any()).
		Return([]model.IdentityID{"u1"}, nil)

	identity, err := s.resolver.Lookup(s.ctx, "tokA")
	s.Require().NoError(err)
	s.Equal("rider", identity.Username)
	s.Equal(1, s.cache.Len())

	verdict, err := s.resolver.Resolve(s.ctx, "tokA")
	s.Require().NoError(err)
	s.Equal(model.VerdictAuthorized, verdict)
}

func (s *ResolverSuite) TestLookupAlwaysAsksProvider() {
	s.cache.Put("tokA", "u1")
	s.mockProvider.EXPECT().
		LookupIdentity(gomock.Any(), "tokA").
		Return(&model.Identity{ID: "u1", Username: "rider"}, nil)

	identity, err := s.resolver.Lookup(s.ctx, "tokA")
	s.Require().NoError(err)
	s.Equal("rider", identity.Username)
}

func (s *ResolverSuite) TestLookupFailure() {
	s.mockProvider.EXPECT().
		LookupIdentity(gomock.Any(), "tokC").
		Return(nil, errors.New("401"))

	_, err := s.resolver.Lookup(s.ctx, "tokC")
	s.ErrorIs(err, model.ErrIdentityLookupFailed)
	s.Equal(0, s.cache.Len())

	_, err = s.resolver.Lookup(s.ctx, " ")
	s.ErrorIs(err, model.ErrIdentityLookupFailed)
}
