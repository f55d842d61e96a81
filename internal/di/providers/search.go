package providers

import (
	"github.com/samber/do/v2"

	"github.com/reelmatch/reelmatch-server/internal/catalog"
	"github.com/reelmatch/reelmatch-server/internal/logger"
	"github.com/reelmatch/reelmatch-server/internal/search"
)

// TitleIndexHandle wraps the title index with shutdown capability.
type TitleIndexHandle struct {
	*search.TitleIndex
}

// Shutdown implements do.Shutdownable.
func (h *TitleIndexHandle) Shutdown() error {
	return h.TitleIndex.Close()
}

// ProvideTitleIndex builds the in-memory title index from the catalog.
func ProvideTitleIndex(i do.Injector) (*TitleIndexHandle, error) {
	log := do.MustInvoke[*logger.Logger](i)
	artifacts := do.MustInvoke[*catalog.Artifacts](i)

	index, err := search.NewTitleIndex(artifacts.Catalog.Movies(), log.Component("search").Logger)
	if err != nil {
		return nil, err
	}

	return &TitleIndexHandle{TitleIndex: index}, nil
}
