package providers

import (
	"github.com/samber/do/v2"

	"github.com/reelmatch/reelmatch-server/internal/config"
	"github.com/reelmatch/reelmatch-server/internal/logger"
	"github.com/reelmatch/reelmatch-server/internal/session"
)

// SessionStoreHandle wraps the session store with shutdown capability.
type SessionStoreHandle struct {
	*session.Store
}

// Shutdown implements do.Shutdownable.
func (h *SessionStoreHandle) Shutdown() error {
	return h.Store.Close()
}

// ProvideSessionStore provides the session store.
func ProvideSessionStore(i do.Injector) (*SessionStoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	store, err := session.Open(cfg.Session.StorePath, cfg.Session.TTL, log.Component("session").WithField("store", sessionStoreLabel(cfg.Session.StorePath)).Logger)
	if err != nil {
		return nil, err
	}

	return &SessionStoreHandle{Store: store}, nil
}
