// Package ledger records how far each product got through publishing, so a
// run that died between the dataset and its showcase can be spotted by the
// next one.
package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/couchcryptid/unosat-hdx-etl/internal/domain"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// Entry is the latest publish state of one product.
type Entry struct {
	ProductID  string              `gorm:"column:product_id;primaryKey"`
	Batch      string              `gorm:"column:batch;not null"`
	State      domain.PublishState `gorm:"column:state;not null;index"`
	DatasetURL string              `gorm:"column:dataset_url"`
	UpdatedAt  time.Time           `gorm:"column:updated_at;autoUpdateTime:false"`
}

func (Entry) TableName() string { return "publish_state" }

// Store persists entries in a SQLite file.
type Store struct {
	db *gorm.DB
}

// Open opens (creating if needed) the ledger at path and migrates its table.
func Open(path string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open ledger %s: %w", path, err)
	}
	if err := db.AutoMigrate(&Entry{}); err != nil {
		return nil, fmt.Errorf("migrate ledger: %w", err)
	}
	return &Store{db: db}, nil
}

// Advance moves a product to state within batch. datasetURL is kept from
// earlier steps when empty.
func (s *Store) Advance(ctx context.Context, batch, productID string, state domain.PublishState, datasetURL string) error {
	e := Entry{
		ProductID:  productID,
		Batch:      batch,
		State:      state,
		DatasetURL: datasetURL,
		UpdatedAt:  domain.Now(),
	}
	columns := []string{"batch", "state", "updated_at"}
	if datasetURL != "" {
		columns = append(columns, "dataset_url")
	}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "product_id"}},
		DoUpdates: clause.AssignmentColumns(columns),
	}).Create(&e).Error
	if err != nil {
		return fmt.Errorf("advance product %s to %s: %w", productID, state, err)
	}
	return nil
}

// Incomplete lists products whose last run stopped before the audit line.
func (s *Store) Incomplete(ctx context.Context) ([]Entry, error) {
	var entries []Entry
	err := s.db.WithContext(ctx).
		Where("state <> ?", domain.StateLogged).
		Order("updated_at, product_id").
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("query incomplete publications: %w", err)
	}
	return entries, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Nop discards every state. It is used when the ledger is turned off.
type Nop struct{}

func (Nop) Advance(context.Context, string, string, domain.PublishState, string) error { return nil }

func (Nop) Incomplete(context.Context) ([]Entry, error) { return nil, nil }
