package usecase

import (
	"context"
	"errors"
	"net/http"

	"agroshop/internal/domain/cart"
	repo "agroshop/internal/repository"
)

// 認証が必要な操作をguestが呼んだ
var ErrNotAuthenticated = errors.New("not authenticated")

// CartService は /cart の業務ロジック。端末IDでセッションを引き、
// カタログから商品・バリアントを引いてセッションへ渡す。
type CartService struct {
	sessions    *CartSessionManager
	productRepo repo.ProductRepository
}

// DI
func NewCartService(sessions *CartSessionManager, productRepo repo.ProductRepository) *CartService {
	return &CartService{
		sessions:    sessions,
		productRepo: productRepo,
	}
}

type AddItemInput struct {
	ProductID int64
	VariantID int64
	Quantity  int64
}

type UpdateItemInput struct {
	ProductID int64
	VariantID int64
	Quantity  int64
}

// resolve はセッションを取得し、認証状態の遷移を反映する。
// ユーザーIDがあれば一度だけ統合同期（Attach）、無ければguestへ戻す。
func (s *CartService) resolve(ctx context.Context, deviceID string, userID string) (*CartSession, error) {
	if deviceID == "" {
		return nil, NewHTTPError(http.StatusBadRequest, "device id required")
	}

	sess := s.sessions.Session(deviceID)

	if userID != "" {
		if err := sess.Attach(ctx, userID); err != nil {
			// リモートが読めない間はサインイン前のカートで継続する
			return nil, NewHTTPError(http.StatusServiceUnavailable, "cart sync unavailable")
		}
	} else if sess.State() == StateAuthenticated {
		sess.Detach()
	}

	return sess, nil
}

// GetCart は現在のカートを返す。
func (s *CartService) GetCart(ctx context.Context, deviceID string, userID string) (CartSnapshot, error) {
	sess, err := s.resolve(ctx, deviceID, userID)
	if err != nil {
		return CartSnapshot{}, err
	}
	return sess.Snapshot(), nil
}

// AddItem はカタログを引いて明細を追加する（同一の商品×バリアントは数量加算）。
func (s *CartService) AddItem(ctx context.Context, deviceID string, userID string, in AddItemInput) (CartSnapshot, error) {
	sess, err := s.resolve(ctx, deviceID, userID)
	if err != nil {
		return CartSnapshot{}, err
	}

	if in.ProductID <= 0 || in.VariantID <= 0 {
		return CartSnapshot{}, NewHTTPError(http.StatusBadRequest, "invalid product or variant id")
	}

	p, v, err := s.productRepo.FindVariant(ctx, in.ProductID, in.VariantID)
	if err == repo.ErrNotFound {
		return CartSnapshot{}, NewHTTPError(http.StatusBadRequest, "invalid")
	}
	if err != nil {
		return CartSnapshot{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if !p.IsActive || !v.IsActive {
		return CartSnapshot{}, NewHTTPError(http.StatusBadRequest, "invalid")
	}

	out, err := sess.Add(ctx,
		cart.ProductInfo{
			ID:       p.ID,
			Name:     p.Name,
			ImageURL: p.ImageURL,
		},
		cart.VariantInfo{
			ID:              v.ID,
			Name:            v.Name,
			SKU:             v.SKU,
			RetailPrice:     v.RetailPrice,
			WholesalePrice:  v.WholesalePrice,
			MinWholesaleQty: v.MinWholesaleQty,
		},
		in.Quantity,
	)
	if err != nil {
		return CartSnapshot{}, cartError(err)
	}
	return out, nil
}

// UpdateItem は明細の数量変更（新しい数量で価格帯を引き直す）。
func (s *CartService) UpdateItem(ctx context.Context, deviceID string, userID string, in UpdateItemInput) (CartSnapshot, error) {
	sess, err := s.resolve(ctx, deviceID, userID)
	if err != nil {
		return CartSnapshot{}, err
	}

	out, err := sess.UpdateQuantity(ctx, in.ProductID, in.VariantID, in.Quantity)
	if err != nil {
		return CartSnapshot{}, cartError(err)
	}
	return out, nil
}

// RemoveItem は明細の削除。存在しない明細でもエラーにしない。
func (s *CartService) RemoveItem(ctx context.Context, deviceID string, userID string, productID, variantID int64) (CartSnapshot, error) {
	sess, err := s.resolve(ctx, deviceID, userID)
	if err != nil {
		return CartSnapshot{}, err
	}

	out, err := sess.Remove(ctx, productID, variantID)
	if err != nil {
		return CartSnapshot{}, cartError(err)
	}
	return out, nil
}

// ClearCart はカートを空にする。
func (s *CartService) ClearCart(ctx context.Context, deviceID string, userID string) (CartSnapshot, error) {
	sess, err := s.resolve(ctx, deviceID, userID)
	if err != nil {
		return CartSnapshot{}, err
	}

	out, err := sess.Clear(ctx)
	if err != nil {
		return CartSnapshot{}, cartError(err)
	}
	return out, nil
}

// 集約の検証エラーをHTTPエラーへ読み替える。
func cartError(err error) error {
	switch {
	case errors.Is(err, cart.ErrInvalidQuantity):
		return NewHTTPError(http.StatusBadRequest, "invalid quantity")
	case errors.Is(err, cart.ErrMissingIdentity), errors.Is(err, cart.ErrMissingPrice):
		return NewHTTPError(http.StatusBadRequest, "invalid")
	case errors.Is(err, cart.ErrItemNotFound):
		return NewHTTPError(http.StatusNotFound, "not found")
	default:
		return NewHTTPError(http.StatusInternalServerError, "internal error")
	}
}
