package usecase

import (
	"context"
	"net/http"
	"strings"
	"time"

	"agroshop/internal/domain/model"
	repo "agroshop/internal/repository"
)

// OrderUsecase は代金引換チェックアウトと注文照会。
// 注文内容はカートセッションの現在のスナップショットから写し取るだけで、
// 在庫や支払いのルールはここでは扱わない。
type OrderUsecase struct {
	tx         repo.TransactionManager
	orders     repo.OrderRepository
	orderItems repo.OrderItemRepository
	cart       *CartService
}

// DI
func NewOrderUsecase(
	tx repo.TransactionManager,
	orders repo.OrderRepository,
	orderItems repo.OrderItemRepository,
	cart *CartService,
) *OrderUsecase {
	return &OrderUsecase{
		tx:         tx,
		orders:     orders,
		orderItems: orderItems,
		cart:       cart,
	}
}

type PlaceOrderInput struct {
	IdempotencyKey string
	ShipName       string
	ShipPhone      string
	ShipAddress    string
}

type OrderItemOutput struct {
	ProductID   int64  `json:"product_id"`
	VariantID   int64  `json:"variant_id"`
	ProductName string `json:"product_name"`
	VariantName string `json:"variant_name"`
	SKU         string `json:"sku"`
	UnitPrice   int64  `json:"unit_price"`
	Quantity    int64  `json:"quantity"`
	Subtotal    int64  `json:"subtotal"`
}

type OrderOutput struct {
	ID            int64             `json:"id"`
	UserID        string            `json:"user_id"`
	Status        string            `json:"status"`
	PaymentMethod string            `json:"payment_method"`
	TotalItems    int64             `json:"total_items"`
	Subtotal      int64             `json:"subtotal"`
	ShipName      string            `json:"ship_name"`
	ShipPhone     string            `json:"ship_phone"`
	ShipAddress   string            `json:"ship_address"`
	CreatedAt     time.Time         `json:"created_at"`
	Items         []OrderItemOutput `json:"items"`
}

// PlaceOrder はカートの現在の内容で代金引換の注文を作る。
// 同じIdempotencyKeyなら既存の注文をそのまま返す。
// 注文が確定したらカートをクリアする（ローカルとリモート両方へ反映）。
func (u *OrderUsecase) PlaceOrder(ctx context.Context, userID string, deviceID string, in PlaceOrderInput) (OrderOutput, error) {
	if userID == "" {
		return OrderOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	key := strings.TrimSpace(in.IdempotencyKey)
	if key == "" || len(key) > 255 {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid idempotency_key")
	}
	if strings.TrimSpace(in.ShipName) == "" {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "ship_name required")
	}
	if strings.TrimSpace(in.ShipPhone) == "" {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "ship_phone required")
	}
	if strings.TrimSpace(in.ShipAddress) == "" {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "ship_address required")
	}

	//カートの現在値を読む（認証済みセッションとして解決される）
	snapshot, err := u.cart.GetCart(ctx, deviceID, userID)
	if err != nil {
		return OrderOutput{}, err
	}

	var out OrderOutput
	var placed bool

	//注文処理はトランザクション
	err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		// 同じキーなら同じ結果
		existing, found, err := r.Orders().FindByIdempotencyKey(ctx, userID, key)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if found {
			//既存注文を返す
			items, err := r.OrderItems().ListByOrderID(ctx, existing.ID)
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			out = toOrderOutput(existing, items)
			return nil
		}

		if len(snapshot.Items) == 0 {
			return NewHTTPError(http.StatusBadRequest, "cart empty")
		}

		order := model.Order{
			UserID:         userID,
			Status:         model.OrderStatusPending,
			PaymentMethod:  model.PaymentMethodCOD,
			TotalItems:     snapshot.TotalItems,
			Subtotal:       snapshot.Subtotal,
			ShipName:       strings.TrimSpace(in.ShipName),
			ShipPhone:      strings.TrimSpace(in.ShipPhone),
			ShipAddress:    strings.TrimSpace(in.ShipAddress),
			IdempotencyKey: key,
		}

		orderID, err := r.Orders().Create(ctx, order)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		orderItems := make([]model.OrderItem, 0, len(snapshot.Items))
		for _, l := range snapshot.Items {
			orderItems = append(orderItems, model.OrderItem{
				ProductID:           l.ProductID,
				VariantID:           l.VariantID,
				ProductNameSnapshot: l.ProductName,
				VariantNameSnapshot: l.VariantName,
				SKUSnapshot:         l.SKU,
				UnitPriceSnapshot:   l.UnitPrice,
				Quantity:            l.Quantity,
			})
		}
		if err := r.OrderItems().CreateBulk(ctx, orderID, orderItems); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		order.ID = orderID
		out = toOrderOutput(order, orderItems)
		placed = true
		return nil
	})
	if err != nil {
		return OrderOutput{}, err
	}

	//クリアが失敗しても注文自体は成立している
	if placed {
		_, _ = u.cart.ClearCart(ctx, deviceID, userID)
	}

	return out, nil
}

// ListMyOrders は自分の注文一覧。
func (u *OrderUsecase) ListMyOrders(ctx context.Context, userID string, page int, limit int) ([]OrderOutput, int64, error) {
	if userID == "" {
		return nil, 0, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	list, total, err := u.orders.ListByUserID(ctx, userID, page, limit)
	if err != nil {
		return nil, 0, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	out := make([]OrderOutput, 0, len(list))
	for _, o := range list {
		items, err := u.orderItems.ListByOrderID(ctx, o.ID)
		if err != nil {
			return nil, 0, NewHTTPError(http.StatusInternalServerError, "db error")
		}
		out = append(out, toOrderOutput(o, items))
	}
	return out, total, nil
}

// GetMyOrder は自分の注文1件（他人の注文は404）。
func (u *OrderUsecase) GetMyOrder(ctx context.Context, userID string, orderID int64) (OrderOutput, error) {
	if userID == "" {
		return OrderOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if orderID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	o, err := u.orders.FindByID(ctx, orderID)
	if err == repo.ErrNotFound {
		return OrderOutput{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return OrderOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if o.UserID != userID {
		return OrderOutput{}, NewHTTPError(http.StatusNotFound, "not found")
	}

	items, err := u.orderItems.ListByOrderID(ctx, o.ID)
	if err != nil {
		return OrderOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return toOrderOutput(o, items), nil
}

func toOrderOutput(o model.Order, items []model.OrderItem) OrderOutput {
	outItems := make([]OrderItemOutput, 0, len(items))
	for _, it := range items {
		outItems = append(outItems, OrderItemOutput{
			ProductID:   it.ProductID,
			VariantID:   it.VariantID,
			ProductName: it.ProductNameSnapshot,
			VariantName: it.VariantNameSnapshot,
			SKU:         it.SKUSnapshot,
			UnitPrice:   it.UnitPriceSnapshot,
			Quantity:    it.Quantity,
			Subtotal:    it.UnitPriceSnapshot * it.Quantity,
		})
	}

	return OrderOutput{
		ID:            o.ID,
		UserID:        o.UserID,
		Status:        string(o.Status),
		PaymentMethod: o.PaymentMethod,
		TotalItems:    o.TotalItems,
		Subtotal:      o.Subtotal,
		ShipName:      o.ShipName,
		ShipPhone:     o.ShipPhone,
		ShipAddress:   o.ShipAddress,
		CreatedAt:     o.CreatedAt,
		Items:         outItems,
	}
}
