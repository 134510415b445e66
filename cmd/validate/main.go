// Command validate checks the products a publishing run would pick up without
// touching the catalog. It selects the same rows as the etl command and
// verifies that each one would transform cleanly.
//
// Usage:
//
//	go run ./cmd/validate -db-params host=db,user=etl,password=...,database=unosat \
//	  -start-date 2024-03-01
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/couchcryptid/unosat-hdx-etl/internal/adapter/sourcedb"
	"github.com/couchcryptid/unosat-hdx-etl/internal/config"
	"github.com/jonboulle/clockwork"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout))
}

func run(args []string, out io.Writer) int {
	cfg, err := config.Load(args, clockwork.NewRealClock())
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: %v\n", err)
		return 1
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	store, err := sourcedb.Open(cfg.DB.DSN())
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: %v\n", err)
		return 1
	}
	defer store.Close()

	areas, err := store.AreaCodes(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load area codes: %v\n", err)
		return 1
	}
	products, err := store.ChangedProducts(ctx, cfg.StartDate)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: select products: %v\n", err)
		return 1
	}

	fmt.Fprintf(out, "=== UNOSAT Product Validation (since %s) ===\n\n", cfg.StartDate.Format("2006-01-02"))
	if report(out, validate(products, areas)) {
		return 0
	}
	return 1
}
