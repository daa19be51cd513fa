package repository

import (
	"context"
	"errors"

	"agroshop/internal/domain/model"
)

var ErrNotFound = errors.New("not found")

// 一覧検索
type ProductListQuery struct {
	Page     int
	Limit    int
	Q        string
	Category string
	MinPrice *int64
	MaxPrice *int64
	Sort     string
}

// 商品の永続化（保存・取得）だけを約束。
type ProductRepository interface {
	ListPublic(ctx context.Context, q ProductListQuery) ([]model.Product, int64, error)
	FindByID(ctx context.Context, id int64) (model.Product, error)

	// カートが消費するカタログ側の契約：
	// 商品とバリアントをペアで取得する（どちらか欠けたら ErrNotFound）。
	FindVariant(ctx context.Context, productID int64, variantID int64) (model.Product, model.ProductVariant, error)

	Create(ctx context.Context, p model.Product) (model.Product, error)
}
