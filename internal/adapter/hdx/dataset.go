package hdx

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/couchcryptid/unosat-hdx-etl/internal/domain"
)

// approvedTagsVocabulary is the HDX vocabulary that dataset tags must belong to.
const approvedTagsVocabulary = "b891512e-9516-4bf5-962a-7a289772a2a1"

// updateFrequencies maps readable update frequencies to HDX's day counts.
var updateFrequencies = map[string]string{
	"Live":               "0",
	"Every day":          "1",
	"Every week":         "7",
	"Every two weeks":    "14",
	"Every month":        "30",
	"Every three months": "90",
	"Every six months":   "180",
	"Every year":         "365",
	"As needed":          "-2",
	"Never":              "-1",
}

type tag struct {
	Name         string `json:"name"`
	VocabularyID string `json:"vocabulary_id,omitempty"`
}

type group struct {
	Name string `json:"name"`
}

type resourcePayload struct {
	ID           string `json:"id,omitempty"`
	Name         string `json:"name"`
	Format       string `json:"format"`
	URL          string `json:"url"`
	Description  string `json:"description"`
	ResourceType string `json:"resource_type"`
	URLType      string `json:"url_type"`
}

type datasetPayload struct {
	ID                  string            `json:"id,omitempty"`
	Name                string            `json:"name"`
	Title               string            `json:"title"`
	Notes               string            `json:"notes"`
	Maintainer          string            `json:"maintainer"`
	OwnerOrg            string            `json:"owner_org"`
	LicenseID           string            `json:"license_id,omitempty"`
	Methodology         string            `json:"methodology,omitempty"`
	MethodologyOther    string            `json:"methodology_other,omitempty"`
	Caveats             string            `json:"caveats,omitempty"`
	DatasetSource       string            `json:"dataset_source,omitempty"`
	Subnational         string            `json:"subnational"`
	Private             bool              `json:"private"`
	Groups              []group           `json:"groups"`
	Tags                []tag             `json:"tags"`
	DataUpdateFrequency string            `json:"data_update_frequency"`
	DatasetDate         string            `json:"dataset_date"`
	Resources           []resourcePayload `json:"resources"`
	UpdatedByScript     string            `json:"updated_by_script,omitempty"`
	Batch               string            `json:"batch,omitempty"`
}

type datasetResult struct {
	ID        string            `json:"id"`
	Name      string            `json:"name"`
	Resources []resourcePayload `json:"resources"`
}

// PublishDataset creates the dataset, or updates it when one with the same
// name exists. On update, resources keep their ids when their names match;
// with RemoveAdditionalResources, resources absent from ds are dropped.
func (c *Client) PublishDataset(ctx context.Context, ds domain.Dataset, opts domain.PublishOptions) (domain.PublishedDataset, error) {
	payload, err := c.datasetPayload(ds, opts)
	if err != nil {
		return domain.PublishedDataset{}, err
	}

	existing, err := c.showDataset(ctx, ds.Name)
	if err != nil && !IsNotFound(err) {
		return domain.PublishedDataset{}, err
	}

	action := "package_create"
	if existing != nil {
		action = "package_update"
		payload.ID = existing.ID
		payload.Resources = mergeResources(payload.Resources, existing.Resources, opts.RemoveAdditionalResources)
	}

	var result datasetResult
	if err := c.action(ctx, action, payload, &result); err != nil {
		return domain.PublishedDataset{}, err
	}
	c.logger.Info("dataset published", "action", action, "dataset", result.Name, "batch", opts.Batch)

	if opts.HXLUpdate {
		if err := c.action(ctx, "package_hxl_update", map[string]string{"id": result.ID}, nil); err != nil {
			return domain.PublishedDataset{}, err
		}
	}

	return domain.PublishedDataset{
		ID:   result.ID,
		Name: result.Name,
		URL:  c.DatasetURL(result.Name),
	}, nil
}

func (c *Client) showDataset(ctx context.Context, name string) (*datasetResult, error) {
	var result datasetResult
	if err := c.action(ctx, "package_show", map[string]string{"id": name}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) datasetPayload(ds domain.Dataset, opts domain.PublishOptions) (datasetPayload, error) {
	frequency, ok := updateFrequencies[ds.UpdateFrequency]
	if !ok {
		return datasetPayload{}, fmt.Errorf("unknown update frequency %q", ds.UpdateFrequency)
	}

	tags := make([]tag, len(ds.Tags))
	for i, t := range ds.Tags {
		tags[i] = tag{Name: t, VocabularyID: approvedTagsVocabulary}
	}

	resources := make([]resourcePayload, len(ds.Resources))
	for i, r := range ds.Resources {
		resources[i] = resourcePayload{
			Name:         r.Name,
			Format:       r.Format,
			URL:          r.URL,
			Description:  r.Description,
			ResourceType: "api",
			URLType:      "api",
		}
	}

	subnational := "0"
	if c.defaults.Subnational {
		subnational = "1"
	}

	p := datasetPayload{
		Name:                ds.Name,
		Title:               ds.Title,
		Notes:               ds.Notes,
		Maintainer:          ds.Maintainer,
		OwnerOrg:            c.defaults.OwnerOrg,
		LicenseID:           c.defaults.License,
		Methodology:         c.defaults.Methodology,
		MethodologyOther:    c.defaults.MethodologyOther,
		Caveats:             c.defaults.Caveats,
		DatasetSource:       c.defaults.Source,
		Subnational:         subnational,
		Private:             c.defaults.Private,
		Groups:              []group{{Name: strings.ToLower(ds.Country)}},
		Tags:                tags,
		DataUpdateFrequency: frequency,
		DatasetDate:         referencePeriod(ds.Date),
		Resources:           resources,
		Batch:               opts.Batch,
	}
	if opts.UpdatedByScript != "" {
		p.UpdatedByScript = fmt.Sprintf("%s (%s)", opts.UpdatedByScript, domain.Now().Format(time.RFC3339))
	}
	return p, nil
}

// referencePeriod formats a single day as an HDX date range.
func referencePeriod(t time.Time) string {
	day := t.UTC().Format("2006-01-02")
	return fmt.Sprintf("[%sT00:00:00 TO %sT23:59:59]", day, day)
}

// mergeResources carries existing resource ids over to same-named resources.
// Unmatched existing resources are dropped when removeOthers is set.
func mergeResources(updated, existing []resourcePayload, removeOthers bool) []resourcePayload {
	byName := make(map[string]resourcePayload, len(existing))
	for _, r := range existing {
		byName[r.Name] = r
	}

	merged := make([]resourcePayload, 0, len(updated)+len(existing))
	matched := make(map[string]bool, len(updated))
	for _, r := range updated {
		if old, ok := byName[r.Name]; ok && !matched[r.Name] {
			r.ID = old.ID
			matched[r.Name] = true
		}
		merged = append(merged, r)
	}

	if removeOthers {
		return merged
	}
	for _, r := range existing {
		if !matched[r.Name] {
			merged = append(merged, r)
		}
	}
	return merged
}
