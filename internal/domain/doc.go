// Package domain models UNOSAT satellite-derived geospatial products and
// their representation as HDX catalog entries.
//
// # Data Source
//
// Products live in the UNOSAT MySQL database. Two tables are read:
//
//	area     id_area → area_iso3 (three-letter ISO country code)
//	product  one row per published map/geodata product
//
// A product is eligible for publishing when it has at least one download
// link (geodatabase or shapefile), is not archived, and was created or
// updated after the run's cutoff.
//
// # Composite Codes
//
// Every product carries a composite code in product_glide. Two layouts
// occur:
//
//	GLIDE (hyphenated):  FL-2023-000042-KEN
//	                     type-year-sequence-iso3
//	UNOSAT (legacy):     EQ20230115SYR001
//	                     [0,2) type  [2,10) date  [10,13) iso3  [13,) sequence
//
// The first two characters of either layout are the disaster type key (see
// [EventTypes]). The embedded ISO3 must agree with the area table; a
// disagreement is treated as corrupt source data and stops the run. See
// [ParseCompositeCode].
//
// # Catalog Entries
//
// Each product becomes a dataset plus a showcase. The dataset name is the
// slugified product title, capped at 90 characters after dropping a few
// filler phrases (see [DatasetName]). The showcase points at the static PDF
// map hosted on the UNOSAT maps site and is linked to its dataset once both
// exist.
package domain
