package domain

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/gosimple/slug"
)

// MaxNameLength is the longest dataset name the catalog accepts.
const MaxNameLength = 90

// fillerPhrases are dropped, in order, from names that are too long.
var fillerPhrases = []string{
	"satellite-detected-",
	"estimation-of-",
	"geodata-of-",
}

// separatorRunes are characters that split words in a name. Existing catalog
// names were made this way, so apostrophes split words and '&' is not spelled
// out.
var separatorRunes = map[rune]string{
	'\'':     "-",
	'\u2018': "-",
	'\u2019': "-",
	'"':      "-",
	'&':      "-",
	'@':      "-",
	'_':      "-",
}

// digitComma matches a thousands separator, which is dropped ("1,000" -> "1000").
var digitComma = regexp.MustCompile(`(\d),(\d)`)

// BuildCatalogEntry derives the dataset and showcase for a product. It does no
// I/O; every failure means the row cannot be published as-is.
func BuildCatalogEntry(p Product, areas AreaCodes) (CatalogEntry, error) {
	if p.IsEmpty() {
		return CatalogEntry{}, ErrEmptyRow
	}

	iso3, err := areas.Lookup(p.AreaID)
	if err != nil {
		return CatalogEntry{}, err
	}

	code, err := ParseCompositeCode(p.Glide)
	if err != nil {
		return CatalogEntry{}, fmt.Errorf("product %d: %w", p.ID, err)
	}
	if code.ISO3 != iso3 {
		return CatalogEntry{}, &CountryMismatchError{AreaID: p.AreaID, AreaISO3: iso3, CodeISO3: code.ISO3}
	}

	tags, err := Tags(code.TypeKey)
	if err != nil {
		return CatalogEntry{}, fmt.Errorf("product %d: %w", p.ID, err)
	}

	name := DatasetName(p.Title)

	dataset := Dataset{
		Name:            name,
		Title:           p.Title,
		Notes:           code.AnnotateNotes(p.Description),
		Maintainer:      MaintainerID,
		Country:         iso3,
		Tags:            tags,
		UpdateFrequency: UpdateFrequencyNever,
		Date:            p.Created,
		Resources: []Resource{
			{
				Name:        ResourceName(p.GDBLink),
				Format:      FormatGeodatabase,
				URL:         p.GDBLink,
				Description: "Zipped geodatabase",
			},
			{
				Name:        ResourceName(p.SHPLink),
				Format:      FormatShapefile,
				URL:         p.SHPLink,
				Description: "Zipped shapefile",
			},
		},
	}

	showcase := Showcase{
		Name:     ShowcaseName(name),
		Title:    showcaseTitle,
		Notes:    showcaseNotes,
		URL:      MapURL(p.Folder, p.MapFile),
		ImageURL: MapURL(p.Folder, p.ImageFile),
		Tags:     append([]string(nil), tags...),
	}

	return CatalogEntry{
		ProductID: p.IDString(),
		Code:      code,
		Dataset:   dataset,
		Showcase:  showcase,
	}, nil
}

// DatasetName slugifies a title. Names longer than MaxNameLength lose the
// filler phrases and are then cut to MaxNameLength.
func DatasetName(title string) string {
	name := slug.Make(normalizeTitle(title))
	if len(name) <= MaxNameLength {
		return name
	}
	for _, phrase := range fillerPhrases {
		name = strings.ReplaceAll(name, phrase, "")
	}
	if len(name) > MaxNameLength {
		name = name[:MaxNameLength]
	}
	return name
}

func normalizeTitle(title string) string {
	for digitComma.MatchString(title) {
		title = digitComma.ReplaceAllString(title, "$1$2")
	}
	return slug.SubstituteRune(title, separatorRunes)
}

// ShowcaseName is the showcase name paired with a dataset name.
func ShowcaseName(datasetName string) string {
	return datasetName + "-showcase"
}

// ResourceName is the last path segment of a download URL.
func ResourceName(link string) string {
	return link[strings.LastIndex(link, "/")+1:]
}

// MapURL builds a URL on the UNOSAT maps site.
func MapURL(folder, file string) string {
	return fmt.Sprintf("%s/%s/%s", MapsBaseURL, folder, file)
}
