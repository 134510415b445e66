// Package pipeline runs one publishing pass: select changed products, derive
// their catalog entries, and publish them one at a time.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/unosat-hdx-etl/internal/domain"
	"github.com/couchcryptid/unosat-hdx-etl/internal/ledger"
	"github.com/couchcryptid/unosat-hdx-etl/internal/observability"
	"github.com/google/uuid"
)

// Source reads the area table and the products changed since a cutoff.
type Source interface {
	AreaCodes(ctx context.Context) (domain.AreaCodes, error)
	ChangedProducts(ctx context.Context, since time.Time) ([]domain.Product, error)
}

// Transformer derives the catalog entry for a product.
type Transformer interface {
	Transform(ctx context.Context, p domain.Product, areas domain.AreaCodes) (domain.CatalogEntry, error)
}

// Catalog is the remote data catalog.
type Catalog interface {
	PublishDataset(ctx context.Context, ds domain.Dataset, opts domain.PublishOptions) (domain.PublishedDataset, error)
	PublishShowcase(ctx context.Context, sc domain.Showcase) (string, error)
	LinkShowcase(ctx context.Context, showcaseID, datasetID string) error
}

// AuditLog records each published product.
type AuditLog interface {
	Append(ctx context.Context, productID, datasetURL string) error
}

// Ledger tracks per-product publish progress.
type Ledger interface {
	Advance(ctx context.Context, batch, productID string, state domain.PublishState, datasetURL string) error
	Incomplete(ctx context.Context) ([]ledger.Entry, error)
}

// Announcer tells downstream consumers about a published product.
type Announcer interface {
	Announce(ctx context.Context, p domain.Publication) error
}

// Result summarizes a finished run.
type Result struct {
	Batch     string
	Selected  int
	Published int
}

// Pipeline publishes changed products to the catalog.
type Pipeline struct {
	source      Source
	transformer Transformer
	catalog     Catalog
	audit       AuditLog
	ledger      Ledger
	announcer   Announcer
	logger      *slog.Logger
	metrics     *observability.Metrics
	newBatchID  func() string
}

// New creates a Pipeline. A nil ledger disables state tracking and a nil
// announcer disables announcements.
func New(src Source, t Transformer, cat Catalog, audit AuditLog, led Ledger, ann Announcer, logger *slog.Logger, metrics *observability.Metrics) *Pipeline {
	if led == nil {
		led = ledger.Nop{}
	}
	return &Pipeline{
		source:      src,
		transformer: t,
		catalog:     cat,
		audit:       audit,
		ledger:      led,
		announcer:   ann,
		logger:      logger,
		metrics:     metrics,
		newBatchID:  uuid.NewString,
	}
}

// Run publishes every product created or updated after since. The first
// failure stops the run; products already published stay published.
func (p *Pipeline) Run(ctx context.Context, since time.Time) (Result, error) {
	start := time.Now()
	defer func() { p.metrics.RunDuration.Observe(time.Since(start).Seconds()) }()

	res := Result{Batch: p.newBatchID()}
	logger := p.logger.With("batch", res.Batch)
	logger.Info(fmt.Sprintf("adding any datasets created or updated after %s", since.Format("2006-01-02")), "since", since)

	if err := p.reportIncomplete(ctx, logger); err != nil {
		return res, p.fail("ledger", err)
	}

	areas, err := p.source.AreaCodes(ctx)
	if err != nil {
		return res, p.fail("select", fmt.Errorf("load area codes: %w", err))
	}

	products, err := p.source.ChangedProducts(ctx, since)
	if err != nil {
		return res, p.fail("select", fmt.Errorf("select products: %w", err))
	}
	if len(products) == 0 {
		return res, p.fail("select", domain.ErrNoResults)
	}
	res.Selected = len(products)
	p.metrics.RowsSelected.Add(float64(len(products)))
	logger.Info("products selected", "rows", len(products))

	for _, product := range products {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		if err := p.publish(ctx, logger, res.Batch, areas, product); err != nil {
			return res, fmt.Errorf("product %d: %w", product.ID, err)
		}
		res.Published++
	}

	p.metrics.LastSuccessTimestamp.Set(float64(domain.Now().Unix()))
	logger.Info("run complete", "rows", res.Selected, "published", res.Published)
	return res, nil
}

// reportIncomplete warns about products an earlier run left half published.
func (p *Pipeline) reportIncomplete(ctx context.Context, logger *slog.Logger) error {
	entries, err := p.ledger.Incomplete(ctx)
	if err != nil {
		return err
	}
	p.metrics.IncompletePublished.Set(float64(len(entries)))
	for _, e := range entries {
		logger.Warn("product left incomplete by an earlier run",
			"product_id", e.ProductID,
			"previous_batch", e.Batch,
			"state", string(e.State),
			"dataset_url", e.DatasetURL,
		)
	}
	return nil
}

// publish runs the per-product steps in order. The ledger moves forward after
// each step so a crash leaves the last completed step on record.
func (p *Pipeline) publish(ctx context.Context, logger *slog.Logger, batch string, areas domain.AreaCodes, product domain.Product) error {
	id := product.IDString()
	logger = logger.With("product_id", id)
	logger.Info("processing product " + id)

	entry, err := p.transformer.Transform(ctx, product, areas)
	if err != nil {
		return p.fail("transform", err)
	}

	if err := p.advance(ctx, batch, id, domain.StatePending, ""); err != nil {
		return err
	}

	opts := domain.PublishOptions{
		Batch:                     batch,
		UpdatedByScript:           domain.ScriptName,
		RemoveAdditionalResources: true,
		HXLUpdate:                 false,
	}
	var dataset domain.PublishedDataset
	err = p.timed("dataset", func() error {
		var err error
		dataset, err = p.catalog.PublishDataset(ctx, entry.Dataset, opts)
		return err
	})
	if err != nil {
		return p.fail("dataset", fmt.Errorf("publish dataset %s: %w", entry.Dataset.Name, err))
	}
	if err := p.advance(ctx, batch, id, domain.StateDatasetCreated, dataset.URL); err != nil {
		return err
	}

	var showcaseID string
	err = p.timed("showcase", func() error {
		var err error
		showcaseID, err = p.catalog.PublishShowcase(ctx, entry.Showcase)
		return err
	})
	if err != nil {
		return p.fail("showcase", fmt.Errorf("publish showcase %s: %w", entry.Showcase.Name, err))
	}
	if err := p.advance(ctx, batch, id, domain.StateShowcaseCreated, ""); err != nil {
		return err
	}

	err = p.timed("link", func() error {
		return p.catalog.LinkShowcase(ctx, showcaseID, dataset.ID)
	})
	if err != nil {
		return p.fail("link", fmt.Errorf("link showcase %s: %w", entry.Showcase.Name, err))
	}
	if err := p.advance(ctx, batch, id, domain.StateLinked, ""); err != nil {
		return err
	}

	if err := p.audit.Append(ctx, id, dataset.URL); err != nil {
		return p.fail("audit", err)
	}
	if err := p.advance(ctx, batch, id, domain.StateLogged, ""); err != nil {
		return err
	}

	if p.announcer != nil {
		pub := domain.Publication{
			ProductID:    id,
			Batch:        batch,
			DatasetName:  dataset.Name,
			DatasetURL:   dataset.URL,
			ShowcaseName: entry.Showcase.Name,
			Country:      entry.Dataset.Country,
			Tags:         entry.Dataset.Tags,
			PublishedAt:  domain.Now(),
		}
		if err := p.announcer.Announce(ctx, pub); err != nil {
			return p.fail("announce", err)
		}
	}

	p.metrics.ProductsPublished.Inc()
	logger.Info("product published", "dataset_url", dataset.URL)
	return nil
}

func (p *Pipeline) advance(ctx context.Context, batch, productID string, state domain.PublishState, datasetURL string) error {
	if err := p.ledger.Advance(ctx, batch, productID, state, datasetURL); err != nil {
		return p.fail("ledger", err)
	}
	return nil
}

func (p *Pipeline) timed(step string, fn func() error) error {
	start := time.Now()
	err := fn()
	p.metrics.CatalogRequestSeconds.WithLabelValues(step).Observe(time.Since(start).Seconds())
	return err
}

func (p *Pipeline) fail(stage string, err error) error {
	p.metrics.PublishErrors.WithLabelValues(stage).Inc()
	return err
}
