package domain

import (
	"fmt"
	"strings"
)

// CodeFormat identifies the layout of a composite code.
type CodeFormat int

const (
	// FormatGlide is the hyphen-delimited GLIDE layout: TT-YYYY-NNNNNN-ISO.
	FormatGlide CodeFormat = iota
	// FormatUNOSAT is the fixed-width legacy layout: TTYYYYMMDDISO....
	FormatUNOSAT
)

// Label is the prefix used when the code is shown in dataset notes.
func (f CodeFormat) Label() string {
	if f == FormatGlide {
		return "Glide code"
	}
	return "UNOSAT code"
}

// codeField is a half-open [start,end) character range within a fixed-width code.
type codeField struct {
	start, end int
}

func (f codeField) from(code string) string {
	return code[f.start:f.end]
}

// Fixed-width UNOSAT layout.
var (
	unosatType    = codeField{0, 2}
	unosatDate    = codeField{2, 10}
	unosatCountry = codeField{10, 13}
)

// GLIDE layout: field positions after splitting on '-'.
const (
	glideTypeField    = 0
	glideCountryField = 3
)

// CompositeCode is a parsed product_glide value.
type CompositeCode struct {
	Raw     string
	Format  CodeFormat
	TypeKey string // two-letter disaster type, see EventTypes
	ISO3    string // country embedded in the code
}

// ParseCompositeCode extracts the type key and embedded country from a
// composite code. A code containing '-' is read as GLIDE, anything else as
// the fixed-width UNOSAT layout.
func ParseCompositeCode(code string) (CompositeCode, error) {
	if len(code) < unosatType.end {
		return CompositeCode{}, fmt.Errorf("%w: %q is too short", ErrMalformedCode, code)
	}

	if strings.Contains(code, "-") {
		fields := strings.Split(code, "-")
		if len(fields) <= glideCountryField {
			return CompositeCode{}, fmt.Errorf("%w: glide code %q has %d fields", ErrMalformedCode, code, len(fields))
		}
		return CompositeCode{
			Raw:     code,
			Format:  FormatGlide,
			TypeKey: unosatType.from(code),
			ISO3:    fields[glideCountryField],
		}, nil
	}

	if len(code) < unosatCountry.end {
		return CompositeCode{}, fmt.Errorf("%w: unosat code %q shorter than %d characters", ErrMalformedCode, code, unosatCountry.end)
	}
	return CompositeCode{
		Raw:     code,
		Format:  FormatUNOSAT,
		TypeKey: unosatType.from(code),
		ISO3:    unosatCountry.from(code),
	}, nil
}

// Date returns the YYYYMMDD date portion of a fixed-width UNOSAT code, or ""
// for GLIDE codes.
func (c CompositeCode) Date() string {
	if c.Format != FormatUNOSAT {
		return ""
	}
	return unosatDate.from(c.Raw)
}

// AnnotateNotes prefixes a product description with the code it came from.
func (c CompositeCode) AnnotateNotes(description string) string {
	return fmt.Sprintf("**%s: %s**  %s", c.Format.Label(), c.Raw, description)
}
