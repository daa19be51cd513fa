package model

import "time"

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "PENDING"
	OrderStatusConfirmed OrderStatus = "CONFIRMED"
	OrderStatusShipped   OrderStatus = "SHIPPED"
	OrderStatusDelivered OrderStatus = "DELIVERED"
	OrderStatusCanceled  OrderStatus = "CANCELED"
)

// 支払いは代金引換のみ。
const PaymentMethodCOD = "COD"

type Order struct {
	ID             int64       `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID         string      `gorm:"type:varchar(64);not null;index" json:"user_id"`
	Status         OrderStatus `gorm:"type:varchar(20);not null;index" json:"status"`
	PaymentMethod  string      `gorm:"type:varchar(20);not null" json:"payment_method"`
	TotalItems     int64       `gorm:"not null" json:"total_items"`
	Subtotal       int64       `gorm:"not null" json:"subtotal"`
	ShipName       string      `gorm:"type:varchar(255);not null" json:"ship_name"`
	ShipPhone      string      `gorm:"type:varchar(50);not null" json:"ship_phone"`
	ShipAddress    string      `gorm:"type:text;not null" json:"ship_address"`
	IdempotencyKey string      `gorm:"type:varchar(255);not null;uniqueIndex" json:"-"`
	CreatedAt      time.Time   `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time   `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
