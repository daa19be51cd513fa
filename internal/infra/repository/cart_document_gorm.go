package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"agroshop/internal/domain/cart"
	"agroshop/internal/domain/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ユーザーごとのリモートカートドキュメントのGORM実装。
type CartDocumentGormRepository struct {
	db *gorm.DB
}

// DI
func NewCartDocumentGormRepository(db *gorm.DB) *CartDocumentGormRepository {
	return &CartDocumentGormRepository{db: db}
}

// Read はユーザーのカートドキュメントを返す。
// まだ1件も書かれていない場合は found=false（エラーではない）。
// スキーマバージョンが現行と違うドキュメントも「無い」扱いにする。
func (r *CartDocumentGormRepository) Read(ctx context.Context, userID string) (cart.Cart, bool, error) {
	var doc model.CartDocument
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&doc).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return cart.Cart{}, false, nil
	}
	if err != nil {
		return cart.Cart{}, false, err
	}

	if doc.Version != cart.SchemaVersion {
		return cart.Cart{}, false, nil
	}

	var c cart.Cart
	if err := json.Unmarshal([]byte(doc.Payload), &c); err != nil {
		return cart.Cart{}, false, fmt.Errorf("cart document: unmarshal: %w", err)
	}
	if c.Items == nil {
		c.Items = []cart.Line{}
	}
	return c, true, nil
}

// Write はカート全体を user_id キーの upsert で保存する。
// 既存ドキュメントは丸ごと置き換えるので、同じカートを何度書いても
// 結果は変わらない。
func (r *CartDocumentGormRepository) Write(ctx context.Context, userID string, c cart.Cart) error {
	payload, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("cart document: marshal: %w", err)
	}

	doc := model.CartDocument{
		UserID:  userID,
		Payload: string(payload),
		Version: c.Version,
	}

	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"payload", "version", "updated_at"}),
		}).
		Create(&doc).Error
}
