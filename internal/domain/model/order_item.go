package model

import "time"

// 注文明細。カート明細の確定時スナップショット。
type OrderItem struct {
	ID                  int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID             int64     `gorm:"not null;index" json:"order_id"`
	ProductID           int64     `gorm:"not null;index" json:"product_id"`
	VariantID           int64     `gorm:"not null;index" json:"variant_id"`
	ProductNameSnapshot string    `gorm:"type:varchar(255);not null" json:"product_name_snapshot"`
	VariantNameSnapshot string    `gorm:"type:varchar(255);not null" json:"variant_name_snapshot"`
	SKUSnapshot         string    `gorm:"type:varchar(100);not null" json:"sku_snapshot"`
	UnitPriceSnapshot   int64     `gorm:"not null" json:"unit_price_snapshot"`
	Quantity            int64     `gorm:"not null" json:"quantity"`
	CreatedAt           time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}
