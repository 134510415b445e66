package pipeline

import (
	"context"
	"log/slog"

	"github.com/couchcryptid/unosat-hdx-etl/internal/domain"
)

// CatalogTransformer implements Transformer with domain.BuildCatalogEntry.
type CatalogTransformer struct {
	logger *slog.Logger
}

// NewTransformer creates a CatalogTransformer.
func NewTransformer(logger *slog.Logger) *CatalogTransformer {
	return &CatalogTransformer{logger: logger}
}

func (t *CatalogTransformer) Transform(_ context.Context, p domain.Product, areas domain.AreaCodes) (domain.CatalogEntry, error) {
	t.logger.Debug("product row",
		"product_id", p.ID,
		"title", p.Title,
		"glide", p.Glide,
		"id_area", p.AreaID,
		"created", p.Created,
		"updated", p.Updated,
		"gdb_link", p.GDBLink,
		"shp_link", p.SHPLink,
	)
	entry, err := domain.BuildCatalogEntry(p, areas)
	if err != nil {
		return entry, err
	}
	t.logger.Debug("catalog entry",
		"product_id", p.ID,
		"dataset", entry.Dataset.Name,
		"code_format", entry.Code.Format.Label(),
		"event_date", entry.Code.Date(),
	)
	return entry, nil
}
