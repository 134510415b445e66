// Package sourcedb reads UNOSAT products from the source MySQL database.
package sourcedb

import (
	"context"
	"fmt"
	"time"

	"github.com/couchcryptid/unosat-hdx-etl/internal/domain"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Store is a single database session. It implements pipeline.Source.
type Store struct {
	db *gorm.DB
}

// Open connects to MySQL with the given DSN. gorm pings on open, so bad
// credentials or an unreachable host fail here.
func Open(dsn string) (*Store, error) {
	gdb, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("connect source db: %w", err)
	}

	sqldb, err := gdb.DB()
	if err != nil {
		return nil, err
	}
	// One session for the whole run.
	sqldb.SetMaxOpenConns(1)

	return &Store{db: gdb}, nil
}

// New wraps an existing gorm handle.
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Close releases the database session.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	sqldb, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqldb.Close()
}

// AreaCodes loads the whole area table.
func (s *Store) AreaCodes(ctx context.Context) (domain.AreaCodes, error) {
	var rows []areaRow
	if err := s.db.WithContext(ctx).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("read areas: %w", err)
	}
	areas := make(domain.AreaCodes, len(rows))
	for _, r := range rows {
		areas[r.ID] = r.ISO3
	}
	return areas, nil
}

// ChangedProducts returns unarchived products with at least one download
// link that were created or updated after since.
func (s *Store) ChangedProducts(ctx context.Context, since time.Time) ([]domain.Product, error) {
	var rows []productRow
	err := s.db.WithContext(ctx).
		Where("NOT (GDB_Link = '' AND SHP_Link = '')").
		Where("product_archived = ?", false).
		Where("(product_created > ? OR updated > ?)", since, since).
		Order("id_product").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("read products: %w", err)
	}

	products := make([]domain.Product, len(rows))
	for i, r := range rows {
		products[i] = r.toDomain()
	}
	return products, nil
}
