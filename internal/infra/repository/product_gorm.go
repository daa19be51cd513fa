package repository

import (
	"context"
	"errors"
	"strings"

	"agroshop/internal/domain/model"
	repo "agroshop/internal/repository"

	"gorm.io/gorm"
)

type ProductGormRepository struct {
	db *gorm.DB
}

// DI
func NewProductGormRepository(db *gorm.DB) *ProductGormRepository {
	return &ProductGormRepository{db: db}
}

// 公開商品のみを、検索/カテゴリ/価格帯/ソート/ページング付きで返す。
// 価格はバリアントの小売価格を対象にする。
func (r *ProductGormRepository) ListPublic(ctx context.Context, q repo.ProductListQuery) ([]model.Product, int64, error) {
	var products []model.Product
	var total int64

	tx := r.db.WithContext(ctx).Model(&model.Product{})

	// 公開（is_active=true）かつ、削除されていないものだけ
	tx = tx.Where("is_active = ?", true)

	// q nameを対象
	if strings.TrimSpace(q.Q) != "" {
		like := "%" + strings.TrimSpace(q.Q) + "%"
		tx = tx.Where("name ILIKE ?", like)
	}

	//カテゴリ
	if strings.TrimSpace(q.Category) != "" {
		tx = tx.Where("category = ?", strings.TrimSpace(q.Category))
	}

	//価格帯（バリアントの小売価格）
	if q.MinPrice != nil {
		tx = tx.Where("id IN (SELECT product_id FROM product_variants WHERE retail_price >= ?)", *q.MinPrice)
	}
	if q.MaxPrice != nil {
		tx = tx.Where("id IN (SELECT product_id FROM product_variants WHERE retail_price <= ?)", *q.MaxPrice)
	}

	//total（件数）
	if err := tx.Count(&total).Error; err != nil {
		return []model.Product{}, 0, err
	}

	//sort
	switch q.Sort {
	case "price_asc":
		tx = tx.Order("(SELECT MIN(retail_price) FROM product_variants pv WHERE pv.product_id = products.id) asc").Order("id asc")
	case "price_desc":
		tx = tx.Order("(SELECT MIN(retail_price) FROM product_variants pv WHERE pv.product_id = products.id) desc").Order("id desc")
	default:
		tx = tx.Order("created_at desc").Order("id desc")
	}

	offset := (q.Page - 1) * q.Limit
	if err := tx.Preload("Variants").Offset(offset).Limit(q.Limit).Find(&products).Error; err != nil {
		return []model.Product{}, 0, err
	}

	return products, total, nil
}

// IDで商品を取得（バリアント込み）
func (r *ProductGormRepository) FindByID(ctx context.Context, id int64) (model.Product, error) {
	var p model.Product
	err := r.db.WithContext(ctx).Preload("Variants").First(&p, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Product{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Product{}, err
	}
	return p, nil
}

// 商品とバリアントをペアで取得する。組み合わせが無ければ ErrNotFound。
func (r *ProductGormRepository) FindVariant(ctx context.Context, productID int64, variantID int64) (model.Product, model.ProductVariant, error) {
	var p model.Product
	err := r.db.WithContext(ctx).First(&p, productID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Product{}, model.ProductVariant{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Product{}, model.ProductVariant{}, err
	}

	var v model.ProductVariant
	err = r.db.WithContext(ctx).
		Where("id = ? AND product_id = ?", variantID, productID).
		First(&v).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Product{}, model.ProductVariant{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Product{}, model.ProductVariant{}, err
	}

	return p, v, nil
}

// 商品の作成（バリアント込み）
func (r *ProductGormRepository) Create(ctx context.Context, p model.Product) (model.Product, error) {
	if err := r.db.WithContext(ctx).Create(&p).Error; err != nil {
		return model.Product{}, err
	}
	return p, nil
}
