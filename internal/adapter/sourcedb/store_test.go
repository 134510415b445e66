package sourcedb

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var cutoff = time.Date(2024, time.March, 8, 0, 0, 0, 0, time.UTC)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "source.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, gdb.AutoMigrate(&areaRow{}, &productRow{}))

	s := New(gdb)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func seed(t *testing.T, s *Store, rows ...any) {
	t.Helper()
	for _, r := range rows {
		require.NoError(t, s.db.Create(r).Error)
	}
}

func product(id int64, created, updated time.Time, gdb, shp string, archived bool) *productRow {
	return &productRow{
		ID:       id,
		Title:    "Product",
		Glide:    "FL20240301KEN001",
		AreaID:   40,
		Created:  created,
		Updated:  updated,
		GDBLink:  gdb,
		SHPLink:  shp,
		Archived: archived,
	}
}

func TestStore_AreaCodes(t *testing.T) {
	s := newTestStore(t)
	seed(t, s, &areaRow{ID: 12, ISO3: "SYR"}, &areaRow{ID: 40, ISO3: "KEN"})

	areas, err := s.AreaCodes(context.Background())
	require.NoError(t, err)
	assert.Len(t, areas, 2)
	assert.Equal(t, "SYR", areas[12])
	assert.Equal(t, "KEN", areas[40])
}

func TestStore_ChangedProducts_Filters(t *testing.T) {
	s := newTestStore(t)
	old := cutoff.Add(-48 * time.Hour)
	recent := cutoff.Add(24 * time.Hour)
	gdb := "https://unosat.org/a.gdb.zip"
	shp := "https://unosat.org/a.shp.zip"

	seed(t, s,
		product(1, recent, old, gdb, shp, false),   // created after cutoff
		product(2, old, recent, "", shp, false),    // updated after cutoff, shapefile only
		product(3, recent, recent, "", "", false),  // no links
		product(4, recent, recent, gdb, shp, true), // archived
		product(5, old, old, gdb, shp, false),      // unchanged
		product(6, recent, old, gdb, "", false),    // geodatabase only
	)

	products, err := s.ChangedProducts(context.Background(), cutoff)
	require.NoError(t, err)

	ids := make([]int64, len(products))
	for i, p := range products {
		ids[i] = p.ID
	}
	assert.Equal(t, []int64{1, 2, 6}, ids)
}

func TestStore_ChangedProducts_MapsColumns(t *testing.T) {
	s := newTestStore(t)
	created := cutoff.Add(time.Hour)
	seed(t, s, &productRow{
		ID:          77,
		Title:       "Flood extent in Garissa",
		Description: "Water detected by Sentinel-1.",
		Glide:       "FL-2024-000031-KEN",
		AreaID:      40,
		Created:     created,
		Updated:     created,
		GDBLink:     "https://unosat.org/77_GDB.zip",
		SHPLink:     "https://unosat.org/77_SHP.zip",
		Folder:      "KE",
		MapFile:     "UNOSAT_Garissa.pdf",
		ImageFile:   "UNOSAT_Garissa.png",
	})

	products, err := s.ChangedProducts(context.Background(), cutoff)
	require.NoError(t, err)
	require.Len(t, products, 1)

	p := products[0]
	assert.Equal(t, int64(77), p.ID)
	assert.Equal(t, "Flood extent in Garissa", p.Title)
	assert.Equal(t, "Water detected by Sentinel-1.", p.Description)
	assert.Equal(t, "FL-2024-000031-KEN", p.Glide)
	assert.Equal(t, 40, p.AreaID)
	assert.True(t, created.Equal(p.Created))
	assert.Equal(t, "https://unosat.org/77_GDB.zip", p.GDBLink)
	assert.Equal(t, "https://unosat.org/77_SHP.zip", p.SHPLink)
	assert.Equal(t, "KE", p.Folder)
	assert.Equal(t, "UNOSAT_Garissa.pdf", p.MapFile)
	assert.Equal(t, "UNOSAT_Garissa.png", p.ImageFile)
	assert.False(t, p.Archived)
}

func TestStore_ChangedProducts_Empty(t *testing.T) {
	s := newTestStore(t)

	products, err := s.ChangedProducts(context.Background(), cutoff)
	require.NoError(t, err)
	assert.Empty(t, products)
}

func TestStore_CloseNil(t *testing.T) {
	var s *Store
	assert.NoError(t, s.Close())
}
