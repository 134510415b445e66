package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNoResults means the product query matched nothing. A scheduled run is
	// expected to always find work, so this stops the run.
	ErrNoResults = errors.New("no db results found")

	// ErrEmptyRow is returned for a product row with no data.
	ErrEmptyRow = errors.New("empty row in db")

	// ErrMalformedCode is returned when a composite code does not fit either layout.
	ErrMalformedCode = errors.New("malformed composite code")

	// ErrUnknownEventType is returned when a type key is missing from EventTypes.
	ErrUnknownEventType = errors.New("unknown event type")
)

// UnknownAreaError is returned when a product references an area that is
// not in the area table.
type UnknownAreaError struct {
	AreaID int
}

func (e *UnknownAreaError) Error() string {
	return fmt.Sprintf("unknown id_area=%d", e.AreaID)
}

// CountryMismatchError is returned when the ISO3 embedded in a product's
// composite code disagrees with the ISO3 resolved from its area.
type CountryMismatchError struct {
	AreaID   int
	AreaISO3 string
	CodeISO3 string
}

func (e *CountryMismatchError) Error() string {
	return fmt.Sprintf("UNOSAT id_area=%d, area_iso3=%s does not match glide iso3=%s",
		e.AreaID, e.AreaISO3, e.CodeISO3)
}
