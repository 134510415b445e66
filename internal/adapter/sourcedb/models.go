package sourcedb

import (
	"time"

	"github.com/couchcryptid/unosat-hdx-etl/internal/domain"
)

// areaRow maps the UNOSAT area table.
type areaRow struct {
	ID   int    `gorm:"column:id_area;primaryKey"`
	ISO3 string `gorm:"column:area_iso3"`
}

func (areaRow) TableName() string { return "area" }

// productRow maps the columns of the UNOSAT product table that are published.
type productRow struct {
	ID          int64     `gorm:"column:id_product;primaryKey"`
	Title       string    `gorm:"column:product_title"`
	Description string    `gorm:"column:product_description"`
	Glide       string    `gorm:"column:product_glide"`
	AreaID      int       `gorm:"column:id_area"`
	Created     time.Time `gorm:"column:product_created"`
	Updated     time.Time `gorm:"column:updated"`
	GDBLink     string    `gorm:"column:GDB_Link"`
	SHPLink     string    `gorm:"column:SHP_Link"`
	Folder      string    `gorm:"column:product_folder"`
	MapFile     string    `gorm:"column:product_url1"`
	ImageFile   string    `gorm:"column:product_img"`
	Archived    bool      `gorm:"column:product_archived"`
}

func (productRow) TableName() string { return "product" }

func (r productRow) toDomain() domain.Product {
	return domain.Product{
		ID:          r.ID,
		Title:       r.Title,
		Description: r.Description,
		Glide:       r.Glide,
		AreaID:      r.AreaID,
		Created:     r.Created,
		Updated:     r.Updated,
		GDBLink:     r.GDBLink,
		SHPLink:     r.SHPLink,
		Folder:      r.Folder,
		MapFile:     r.MapFile,
		ImageFile:   r.ImageFile,
		Archived:    r.Archived,
	}
}
