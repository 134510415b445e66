package main

import (
	"fmt"
	"io"

	"github.com/couchcryptid/unosat-hdx-etl/internal/domain"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func validate(products []domain.Product, areas domain.AreaCodes) []*phase {
	return []*phase{
		validateSelection(products),
		validateCodes(products),
		validateCountries(products, areas),
		validateNames(products),
		validateResources(products, areas),
	}
}

func validateSelection(products []domain.Product) *phase {
	p := &phase{name: "Phase 1: Selection"}
	if len(products) == 0 {
		p.errorf("%v", domain.ErrNoResults)
	}
	for _, prod := range products {
		if prod.IsEmpty() {
			p.errorf("product %d: %v", prod.ID, domain.ErrEmptyRow)
		}
		if prod.GDBLink == "" && prod.SHPLink == "" {
			p.errorf("product %d: no download links", prod.ID)
		}
	}
	return p
}

func validateCodes(products []domain.Product) *phase {
	p := &phase{name: "Phase 2: Code Parsing"}
	for _, prod := range products {
		code, err := domain.ParseCompositeCode(prod.Glide)
		if err != nil {
			p.errorf("product %d: %v", prod.ID, err)
			continue
		}
		if _, err := domain.EventCategory(code.TypeKey); err != nil {
			p.errorf("product %d: %v", prod.ID, err)
		}
	}
	return p
}

func validateCountries(products []domain.Product, areas domain.AreaCodes) *phase {
	p := &phase{name: "Phase 3: Country Consistency"}
	for _, prod := range products {
		iso3, err := areas.Lookup(prod.AreaID)
		if err != nil {
			p.errorf("product %d: %v", prod.ID, err)
			continue
		}
		code, err := domain.ParseCompositeCode(prod.Glide)
		if err != nil {
			continue // reported by code parsing
		}
		if code.ISO3 != iso3 {
			p.errorf("product %d: %v", prod.ID, &domain.CountryMismatchError{AreaID: prod.AreaID, AreaISO3: iso3, CodeISO3: code.ISO3})
		}
	}
	return p
}

func validateNames(products []domain.Product) *phase {
	p := &phase{name: "Phase 4: Dataset Names"}
	seen := make(map[string]int64, len(products))
	for _, prod := range products {
		name := domain.DatasetName(prod.Title)
		switch {
		case name == "":
			p.errorf("product %d: title %q yields an empty name", prod.ID, prod.Title)
		case len(name) > domain.MaxNameLength:
			p.errorf("product %d: name %q is %d characters", prod.ID, name, len(name))
		}
		if other, ok := seen[name]; ok && name != "" {
			p.errorf("product %d: name %q also used by product %d", prod.ID, name, other)
		}
		seen[name] = prod.ID
	}
	return p
}

func validateResources(products []domain.Product, areas domain.AreaCodes) *phase {
	p := &phase{name: "Phase 5: Resources"}
	for _, prod := range products {
		entry, err := domain.BuildCatalogEntry(prod, areas)
		if err != nil {
			continue // reported by an earlier phase
		}
		if n := len(entry.Dataset.Resources); n != 2 {
			p.errorf("product %d: %d resources", prod.ID, n)
		}
		for _, r := range entry.Dataset.Resources {
			if r.Name == "" {
				p.errorf("product %d: %s resource has no file name (url %q)", prod.ID, r.Format, r.URL)
			}
		}
	}
	return p
}

// report prints a phase table followed by details of failing phases. It
// returns true when every phase passed.
func report(out io.Writer, phases []*phase) bool {
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Fprintf(out, "  %-42s %s\n", p.name, status)
	}

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Fprintf(out, "\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Fprintf(out, "  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Fprintln(out, "\nAll validations passed.")
		return true
	}
	fmt.Fprintln(out, "\nValidation FAILED.")
	return false
}
