package domain

import "time"

const (
	// MaintainerID is the HDX user that maintains every UNOSAT dataset.
	MaintainerID = "83fa9515-3ba4-4f1d-9860-f38b20f80442"

	// UpdateFrequencyNever marks datasets that are published once.
	UpdateFrequencyNever = "Never"

	// ScriptName identifies this publisher to the catalog.
	ScriptName = "UNOSAT"

	// MapsBaseURL hosts the static maps referenced by showcases.
	MapsBaseURL = "https://unosat-maps.web.cern.ch/unosat-maps"

	showcaseTitle = "Static PDF Map"
	showcaseNotes = "Static viewing map for printing."
)

// Resource formats attached to every dataset.
const (
	FormatGeodatabase = "zipped geodatabase"
	FormatShapefile   = "zipped shapefile"
)

// Resource is a downloadable file attached to a dataset.
type Resource struct {
	Name        string `json:"name"`
	Format      string `json:"format"`
	URL         string `json:"url"`
	Description string `json:"description"`
}

// Dataset is the catalog entry derived from a product.
type Dataset struct {
	Name            string
	Title           string
	Notes           string
	Maintainer      string
	Country         string // ISO3
	Tags            []string
	UpdateFrequency string
	Date            time.Time
	Resources       []Resource
}

// Showcase is the visual companion of a dataset.
type Showcase struct {
	Name     string
	Title    string
	Notes    string
	URL      string
	ImageURL string
	Tags     []string
}

// CatalogEntry is everything published for one product.
type CatalogEntry struct {
	ProductID string
	Code      CompositeCode
	Dataset   Dataset
	Showcase  Showcase
}

// PublishOptions control how a dataset is written to the catalog.
type PublishOptions struct {
	Batch                     string
	UpdatedByScript           string
	RemoveAdditionalResources bool
	HXLUpdate                 bool
}

// PublishedDataset identifies a dataset after it was created or updated.
type PublishedDataset struct {
	ID   string
	Name string
	URL  string
}

// Publication announces a fully published product.
type Publication struct {
	ProductID    string    `json:"product_id"`
	Batch        string    `json:"batch"`
	DatasetName  string    `json:"dataset_name"`
	DatasetURL   string    `json:"dataset_url"`
	ShowcaseName string    `json:"showcase_name"`
	Country      string    `json:"country"`
	Tags         []string  `json:"tags"`
	PublishedAt  time.Time `json:"published_at"`
}

// PublishState tracks a product's progress through the publish steps.
type PublishState string

const (
	StatePending         PublishState = "pending"
	StateDatasetCreated  PublishState = "dataset_created"
	StateShowcaseCreated PublishState = "showcase_created"
	StateLinked          PublishState = "linked"
	StateLogged          PublishState = "logged"
)
