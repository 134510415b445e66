package hdx

import (
	"context"

	"github.com/couchcryptid/unosat-hdx-etl/internal/domain"
)

type showcasePayload struct {
	ID       string `json:"id,omitempty"`
	Name     string `json:"name"`
	Title    string `json:"title"`
	Notes    string `json:"notes"`
	URL      string `json:"url"`
	ImageURL string `json:"image_url"`
	Tags     []tag  `json:"tags"`
}

type showcaseResult struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// PublishShowcase creates the showcase, or updates the one with the same
// name, and returns its id.
func (c *Client) PublishShowcase(ctx context.Context, sc domain.Showcase) (string, error) {
	tags := make([]tag, len(sc.Tags))
	for i, t := range sc.Tags {
		tags[i] = tag{Name: t, VocabularyID: approvedTagsVocabulary}
	}
	payload := showcasePayload{
		Name:     sc.Name,
		Title:    sc.Title,
		Notes:    sc.Notes,
		URL:      sc.URL,
		ImageURL: sc.ImageURL,
		Tags:     tags,
	}

	var existing showcaseResult
	err := c.action(ctx, "ckanext_showcase_show", map[string]string{"id": sc.Name}, &existing)
	if err != nil && !IsNotFound(err) {
		return "", err
	}

	action := "ckanext_showcase_create"
	if err == nil {
		action = "ckanext_showcase_update"
		payload.ID = existing.ID
	}

	var result showcaseResult
	if err := c.action(ctx, action, payload, &result); err != nil {
		return "", err
	}
	c.logger.Info("showcase published", "action", action, "showcase", result.Name)
	return result.ID, nil
}

// LinkShowcase associates a dataset with a showcase. An existing association
// is left alone.
func (c *Client) LinkShowcase(ctx context.Context, showcaseID, datasetID string) error {
	var linked []datasetResult
	if err := c.action(ctx, "ckanext_showcase_package_list", map[string]string{"showcase_id": showcaseID}, &linked); err != nil {
		return err
	}
	for _, d := range linked {
		if d.ID == datasetID {
			return nil
		}
	}

	return c.action(ctx, "ckanext_showcase_package_association_create", map[string]string{
		"package_id":  datasetID,
		"showcase_id": showcaseID,
	}, nil)
}
