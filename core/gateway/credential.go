package gateway

import (
	"context"
	"errors"
	"log/slog"

	"github.com/dmitrymomot/restokit/core/credential"
	"github.com/dmitrymomot/restokit/core/logger"
)

// SetCredential installs token as the active credential. An empty (or
// "null"/"undefined") token clears it. Cached responses are purged whenever
// the credential changes. Persistence is best-effort: store failures are
// logged and never returned.
func (g *Gateway) SetCredential(ctx context.Context, token string) {
	token = credential.Normalize(token)

	g.mu.Lock()
	changed := g.credential != token
	g.credential = token
	if changed {
		g.generation++
	}
	g.mu.Unlock()

	if changed {
		if n := g.Invalidate(""); n > 0 {
			g.log.DebugContext(ctx, "cache purged after credential change", logger.Count("entries", n))
		}
	}

	g.persist(ctx, token)
}

// Credential returns the active credential, or "" when none is set.
func (g *Gateway) Credential() string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.credential
}

func (g *Gateway) credentialState() (string, uint64) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.credential, g.generation
}

// HasValidCredential reports whether a credential is installed.
func (g *Gateway) HasValidCredential() bool {
	return g.Credential() != ""
}

func (g *Gateway) persist(ctx context.Context, token string) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), storeTimeout)
	defer cancel()

	var err error
	action := "save"
	if token == "" {
		action = "clear"
		err = g.store.Clear(ctx)
	} else {
		err = g.store.Save(ctx, token)
	}
	if err != nil {
		g.log.WarnContext(ctx, "credential persistence failed", logger.Action(action), logger.Error(err))
	}
}

func (g *Gateway) restoreCredential() {
	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()

	stored, err := g.store.Load(ctx)
	if err != nil {
		if !errors.Is(err, credential.ErrNotFound) {
			g.log.WarnContext(ctx, "credential restore failed", logger.Error(err))
		}
		return
	}

	token := credential.Normalize(stored)
	if token == "" {
		// Sentinel values are not credentials; drop them from storage too.
		if err := g.store.Clear(ctx); err != nil {
			g.log.WarnContext(ctx, "credential cleanup failed", logger.Error(err))
		}
		return
	}

	g.mu.Lock()
	g.credential = token
	g.mu.Unlock()
	g.log.DebugContext(ctx, "credential restored", logger.Secret("credential", token), slog.Bool("persisted", true))
}
