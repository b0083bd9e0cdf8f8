package auth

//go:generate mockgen -source=resolver.go -destination=mocks/mock_resolver.go -package=mocks

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/nohumanman/descenders-modding/internal/model"
)

// lookupTimeout bounds a shared provider call once it no longer follows the
// context of the caller that started it
const lookupTimeout = 10 * time.Second

// IdentityProvider resolves a session credential to an external identity
type IdentityProvider interface {
	LookupIdentity(ctx context.Context, credential string) (*model.Identity, error)
}

// AllowList returns the identities permitted to perform privileged operations
type AllowList interface {
	GetAuthorizedIDs(ctx context.Context) ([]model.IdentityID, error)
}

// Resolver turns a session credential into an authorization verdict.
// Identities are cached per credential; the allow-list is read on every call
// so membership changes take effect immediately.
type Resolver struct {
	cache     *IdentityCache
	provider  IdentityProvider
	allowList AllowList
	logger    *slog.Logger

	lookups singleflight.Group
}

// NewResolver creates a new Resolver
func NewResolver(cache *IdentityCache, provider IdentityProvider, allowList AllowList, logger *slog.Logger) *Resolver {
	return &Resolver{
		cache:     cache,
		provider:  provider,
		allowList: allowList,
		logger:    logger.With(slog.String("component", "auth-resolver")),
	}
}

// Resolve returns the verdict for a credential.
// A blank credential is VerdictUnknown with no error. Provider and allow-list
// failures are VerdictUnknown with an error wrapping ErrIdentityLookupFailed
// or ErrAllowListUnavailable; they are never reported as unauthorized. A
// caller whose own context ends while waiting gets that context's error.
func (r *Resolver) Resolve(ctx context.Context, credential string) (model.Verdict, error) {
	if strings.TrimSpace(credential) == "" {
		return model.VerdictUnknown, nil
	}

	id, err := r.Identify(ctx, credential)
	if err != nil {
		return model.VerdictUnknown, err
	}

	authorized, err := r.allowList.GetAuthorizedIDs(ctx)
	if err != nil {
		r.logger.Error("failed to read allow-list", slog.String("error", err.Error()))
		return model.VerdictUnknown, fmt.Errorf("%w: %v", model.ErrAllowListUnavailable, err)
	}

	for _, allowed := range authorized {
		if allowed == id {
			return model.VerdictAuthorized, nil
		}
	}
	return model.VerdictUnauthorized, nil
}

// Identify returns the identity a credential belongs to, consulting the
// cache before the provider
func (r *Resolver) Identify(ctx context.Context, credential string) (model.IdentityID, error) {
	if strings.TrimSpace(credential) == "" {
		return "", fmt.Errorf("%w: empty credential", model.ErrIdentityLookupFailed)
	}

	if id, ok := r.cache.Get(credential); ok {
		return id, nil
	}

	identity, err := r.lookup(ctx, credential, true)
	if err != nil {
		return "", err
	}
	return identity.ID, nil
}

// Lookup fetches the full identity for a credential from the provider and
// caches its id, so later Resolve calls skip the provider
func (r *Resolver) Lookup(ctx context.Context, credential string) (*model.Identity, error) {
	if strings.TrimSpace(credential) == "" {
		return nil, fmt.Errorf("%w: empty credential", model.ErrIdentityLookupFailed)
	}
	return r.lookup(ctx, credential, false)
}

// lookup runs one provider call per credential no matter how many callers
// are waiting. The call is detached from any single caller's context; each
// caller stops waiting when its own context ends.
func (r *Resolver) lookup(ctx context.Context, credential string, idOnly bool) (*model.Identity, error) {
	key := credential
	if !idOnly {
		key = "profile\x00" + credential
	}

	results := r.lookups.DoChan(key, func() (any, error) {
		if idOnly {
			// Another caller may have filled the entry while we waited
			if id, ok := r.cache.Get(credential); ok {
				return &model.Identity{ID: id}, nil
			}
		}

		lookupCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), lookupTimeout)
		defer cancel()

		identity, err := r.provider.LookupIdentity(lookupCtx, credential)
		if err != nil {
			r.logger.Warn("identity lookup failed", slog.String("error", err.Error()))
			return nil, fmt.Errorf("%w: %v", model.ErrIdentityLookupFailed, err)
		}
		if identity == nil || identity.ID == "" {
			return nil, fmt.Errorf("%w: provider returned no identity", model.ErrIdentityLookupFailed)
		}

		r.cache.Put(credential, identity.ID)
		r.logger.Debug("identity cached", slog.String("identity_id", string(identity.ID)))
		return identity, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-results:
		if res.Err != nil {
			return nil, res.Err
		}
		identity := *res.Val.(*model.Identity)
		return &identity, nil
	}
}
