package cart

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPriceFor_BelowThresholdIsRetail(t *testing.T) {
	v := VariantInfo{ID: 1, RetailPrice: 500, WholesalePrice: 400, MinWholesaleQty: 10}

	price, tier := PriceFor(v, 9)
	assert.Equal(t, int64(500), price)
	assert.Equal(t, TierRetail, tier)
}

func TestPriceFor_AtThresholdIsWholesale(t *testing.T) {
	v := VariantInfo{ID: 1, RetailPrice: 500, WholesalePrice: 400, MinWholesaleQty: 10}

	//しきい値ちょうどで卸売に切り替わる
	price, tier := PriceFor(v, 10)
	assert.Equal(t, int64(400), price)
	assert.Equal(t, TierWholesale, tier)

	price, tier = PriceFor(v, 11)
	assert.Equal(t, int64(400), price)
	assert.Equal(t, TierWholesale, tier)
}

func TestPriceFor_NoWholesalePriceStaysRetail(t *testing.T) {
	v := VariantInfo{ID: 1, RetailPrice: 500, WholesalePrice: 0, MinWholesaleQty: 10}

	//卸売価格が無ければどれだけ買っても小売
	price, tier := PriceFor(v, 1000)
	assert.Equal(t, int64(500), price)
	assert.Equal(t, TierRetail, tier)
}

func TestPriceFor_DefaultThresholdWhenVariantHasNone(t *testing.T) {
	v := VariantInfo{ID: 1, RetailPrice: 500, WholesalePrice: 400, MinWholesaleQty: 0}

	price, tier := PriceFor(v, DefaultWholesaleThreshold-1)
	assert.Equal(t, TierRetail, tier)
	assert.Equal(t, int64(500), price)

	price, tier = PriceFor(v, DefaultWholesaleThreshold)
	assert.Equal(t, TierWholesale, tier)
	assert.Equal(t, int64(400), price)
}

func TestPriceFor_CustomThresholdOverridesDefault(t *testing.T) {
	v := VariantInfo{ID: 1, RetailPrice: 500, WholesalePrice: 400, MinWholesaleQty: 25}

	_, tier := PriceFor(v, 10)
	assert.Equal(t, TierRetail, tier)

	_, tier = PriceFor(v, 25)
	assert.Equal(t, TierWholesale, tier)
}
