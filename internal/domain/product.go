package domain

import (
	"strconv"
	"time"
)

// AreaCodes maps a UNOSAT area identifier to its ISO3 country code.
// It is loaded once per run and only read afterwards.
type AreaCodes map[int]string

// Lookup returns the ISO3 code for an area, or an *UnknownAreaError.
func (a AreaCodes) Lookup(areaID int) (string, error) {
	iso3, ok := a[areaID]
	if !ok {
		return "", &UnknownAreaError{AreaID: areaID}
	}
	return iso3, nil
}

// Product is one row of the UNOSAT product table.
type Product struct {
	ID          int64
	Title       string
	Description string
	Glide       string // composite code, see ParseCompositeCode
	AreaID      int
	Created     time.Time
	Updated     time.Time
	GDBLink     string // zipped geodatabase download
	SHPLink     string // zipped shapefile download
	Folder      string // folder on the UNOSAT maps site
	MapFile     string // static PDF map file name
	ImageFile   string // static map preview image file name
	Archived    bool
}

// IsEmpty reports whether the row carries no usable data at all.
func (p Product) IsEmpty() bool {
	return p.ID == 0 && p.Title == "" && p.Glide == ""
}

// IDString is the product identifier as written to the audit log.
func (p Product) IDString() string {
	return strconv.FormatInt(p.ID, 10)
}
