package cart

import "errors"

// 保存フォーマットのスキーマバージョン。
// 読み込み側はこれと一致しない保存値を空カート扱いにする。
const SchemaVersion = 1

var (
	// 数量が1未満
	ErrInvalidQuantity = errors.New("quantity must be >= 1")

	// 商品・バリアントのIDが欠けている
	ErrMissingIdentity = errors.New("product or variant identity missing")

	// 小売価格が欠けている
	ErrMissingPrice = errors.New("retail price missing")

	// 対象の明細がカートに無い
	ErrItemNotFound = errors.New("cart item not found")
)

// カートの明細。(ProductID, VariantID) がカート内で一意。
// 表示用フィールドと両方の価格は追加時点のスナップショット。
type Line struct {
	ProductID       int64     `json:"product_id"`
	VariantID       int64     `json:"variant_id"`
	ProductName     string    `json:"product_name"`
	VariantName     string    `json:"variant_name"`
	SKU             string    `json:"sku"`
	ImageURL        string    `json:"image_url"`
	Quantity        int64     `json:"quantity"`
	UnitPrice       int64     `json:"unit_price"`
	Subtotal        int64     `json:"subtotal"`
	AppliedPricing  PriceTier `json:"applied_pricing"`
	RetailPrice     int64     `json:"retail_price"`
	WholesalePrice  int64     `json:"wholesale_price"`
	MinWholesaleQty int64     `json:"min_wholesale_qty"`
}

// カート集約。TotalItems と Subtotal は常に Items から再計算する。
type Cart struct {
	Version    int    `json:"version"`
	Items      []Line `json:"items"`
	TotalItems int64  `json:"total_items"`
	Subtotal   int64  `json:"subtotal"`
}

// New は空のカートを返す。
func New() Cart {
	return Cart{
		Version: SchemaVersion,
		Items:   []Line{},
	}
}

// Add は明細を追加する。既存の (productID, variantID) は数量を加算し、
// 加算後の合計数量で価格帯を引き直す。入力のカートは変更しない。
func Add(c Cart, p ProductInfo, v VariantInfo, quantity int64) (Cart, error) {
	if quantity < 1 {
		return Cart{}, ErrInvalidQuantity
	}
	if p.ID <= 0 || v.ID <= 0 {
		return Cart{}, ErrMissingIdentity
	}
	if v.RetailPrice <= 0 {
		return Cart{}, ErrMissingPrice
	}

	items := copyLines(c.Items)

	if i := indexOf(items, p.ID, v.ID); i >= 0 {
		items[i] = repriced(items[i], items[i].Quantity+quantity)
		return rebuild(items), nil
	}

	unitPrice, tier := PriceFor(v, quantity)
	items = append(items, Line{
		ProductID:       p.ID,
		VariantID:       v.ID,
		ProductName:     p.Name,
		VariantName:     v.Name,
		SKU:             v.SKU,
		ImageURL:        p.ImageURL,
		Quantity:        quantity,
		UnitPrice:       unitPrice,
		Subtotal:        unitPrice * quantity,
		AppliedPricing:  tier,
		RetailPrice:     v.RetailPrice,
		WholesalePrice:  v.WholesalePrice,
		MinWholesaleQty: v.MinWholesaleQty,
	})
	return rebuild(items), nil
}

// UpdateQuantity は明細の数量を置き換え、新しい数量で価格帯を引き直す。
func UpdateQuantity(c Cart, productID, variantID, quantity int64) (Cart, error) {
	if quantity < 1 {
		return Cart{}, ErrInvalidQuantity
	}

	i := indexOf(c.Items, productID, variantID)
	if i < 0 {
		return Cart{}, ErrItemNotFound
	}

	items := copyLines(c.Items)
	items[i] = repriced(items[i], quantity)
	return rebuild(items), nil
}

// Remove は明細を取り除く。存在しない明細の削除はエラーではなく no-op。
func Remove(c Cart, productID, variantID int64) Cart {
	i := indexOf(c.Items, productID, variantID)
	if i < 0 {
		return rebuild(copyLines(c.Items))
	}

	items := make([]Line, 0, len(c.Items)-1)
	items = append(items, c.Items[:i]...)
	items = append(items, c.Items[i+1:]...)
	return rebuild(items)
}

// Clear は空のカートを返す。
func Clear() Cart {
	return New()
}

// 明細の数量を差し替えて、保持しているスナップショット価格から引き直す。
func repriced(l Line, quantity int64) Line {
	unitPrice, tier := PriceFor(VariantInfo{
		RetailPrice:     l.RetailPrice,
		WholesalePrice:  l.WholesalePrice,
		MinWholesaleQty: l.MinWholesaleQty,
	}, quantity)

	l.Quantity = quantity
	l.UnitPrice = unitPrice
	l.Subtotal = unitPrice * quantity
	l.AppliedPricing = tier
	return l
}

// 合計を明細全体から作り直す。
func rebuild(items []Line) Cart {
	c := Cart{
		Version: SchemaVersion,
		Items:   items,
	}
	for _, l := range items {
		c.TotalItems += l.Quantity
		c.Subtotal += l.Subtotal
	}
	return c
}

func indexOf(items []Line, productID, variantID int64) int {
	for i, l := range items {
		if l.ProductID == productID && l.VariantID == variantID {
			return i
		}
	}
	return -1
}

func copyLines(items []Line) []Line {
	out := make([]Line, len(items))
	copy(out, items)
	return out
}
