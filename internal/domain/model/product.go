package model

import (
	"time"

	"gorm.io/gorm"
)

type Product struct {
	ID          int64            `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string           `gorm:"type:varchar(255);not null" json:"name"`
	Description string           `gorm:"type:text" json:"description"`
	Category    string           `gorm:"type:varchar(100);index" json:"category"`
	ImageURL    string           `gorm:"type:varchar(512)" json:"image_url"`
	IsActive    bool             `gorm:"not null;default:false" json:"is_active"`
	Variants    []ProductVariant `gorm:"foreignKey:ProductID" json:"variants"`
	CreatedAt   time.Time        `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time        `gorm:"not null;autoUpdateTime" json:"updated_at"`
	DeletedAt   gorm.DeletedAt   `gorm:"index" json:"-"`
}

// 商品のバリアント（袋サイズ・品種など）。
// 小売価格は必須。卸売価格は0なら未設定で、数量に関係なく小売扱い。
type ProductVariant struct {
	ID              int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	ProductID       int64     `gorm:"not null;index" json:"product_id"`
	Name            string    `gorm:"type:varchar(255);not null" json:"name"`
	SKU             string    `gorm:"type:varchar(100);uniqueIndex;not null" json:"sku"`
	RetailPrice     int64     `gorm:"not null" json:"retail_price"`
	WholesalePrice  int64     `gorm:"not null;default:0" json:"wholesale_price"`
	MinWholesaleQty int64     `gorm:"not null;default:0" json:"min_wholesale_qty"`
	Stock           int64     `gorm:"not null;default:0" json:"stock"`
	IsActive        bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt       time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
