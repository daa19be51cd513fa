package cart

// 価格のどちらが適用されたか（小売 / 卸売）
type PriceTier string

const (
	TierRetail    PriceTier = "RETAIL"
	TierWholesale PriceTier = "WHOLESALE"
)

// 卸売のデフォルト数量しきい値。
// バリアント側に個別のしきい値が無い場合はこれを使う。
const DefaultWholesaleThreshold int64 = 10

// カートに入れる時点で商品から写し取る情報
type ProductInfo struct {
	ID       int64
	Name     string
	ImageURL string
}

// バリアントから写し取る情報（両方の価格としきい値を保持する）
type VariantInfo struct {
	ID              int64
	Name            string
	SKU             string
	RetailPrice     int64
	WholesalePrice  int64
	MinWholesaleQty int64
}

// PriceFor は数量に応じた単価と適用価格帯を返す。
// 数量がしきい値以上（しきい値ちょうどを含む）かつ卸売価格があるときだけ卸売。
// 卸売価格が未設定（0以下）なら数量に関係なく小売。
// 丸めや通貨換算はしない。
func PriceFor(v VariantInfo, quantity int64) (int64, PriceTier) {
	threshold := v.MinWholesaleQty
	if threshold <= 0 {
		threshold = DefaultWholesaleThreshold
	}

	if v.WholesalePrice > 0 && quantity >= threshold {
		return v.WholesalePrice, TierWholesale
	}
	return v.RetailPrice, TierRetail
}
