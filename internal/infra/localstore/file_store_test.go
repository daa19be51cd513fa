package localstore

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"agroshop/internal/domain/cart"

	"github.com/stretchr/testify/assert"
)

func testCart(t *testing.T) cart.Cart {
	t.Helper()
	c, err := cart.Add(cart.New(),
		cart.ProductInfo{ID: 1, Name: "トマト", ImageURL: "/img/tomato.jpg"},
		cart.VariantInfo{ID: 11, Name: "1kg箱", SKU: "TOM-1KG", RetailPrice: 800, WholesalePrice: 650, MinWholesaleQty: 10},
		3,
	)
	assert.NoError(t, err)
	return c
}

func TestFileStore_RoundTrip(t *testing.T) {
	s, err := NewFileStore(t.TempDir())
	assert.NoError(t, err)

	want := testCart(t)
	assert.NoError(t, s.Write("device-1", want))

	got := s.Read("device-1")
	assert.Equal(t, want.Items, got.Items)
	assert.Equal(t, want.TotalItems, got.TotalItems)
	assert.Equal(t, want.Subtotal, got.Subtotal)
	assert.Equal(t, cart.SchemaVersion, got.Version)
}

func TestFileStore_ReadMissingFileReturnsEmpty(t *testing.T) {
	s, err := NewFileStore(t.TempDir())
	assert.NoError(t, err)

	got := s.Read("never-written")
	assert.Empty(t, got.Items)
	assert.Equal(t, int64(0), got.TotalItems)
	assert.Equal(t, cart.SchemaVersion, got.Version)
}

func TestFileStore_ReadCorruptFileReturnsEmpty(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileStore(dir)
	assert.NoError(t, err)

	//壊れたJSONでもエラーにせず空カート
	path := filepath.Join(dir, "cart_device-1.json")
	assert.NoError(t, os.WriteFile(path, []byte("{broken"), 0o644))

	got := s.Read("device-1")
	assert.Empty(t, got.Items)
}

func TestFileStore_ReadVersionMismatchReturnsEmpty(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileStore(dir)
	assert.NoError(t, err)

	stored := storedCart{Version: cart.SchemaVersion + 1, TotalItems: 5, Subtotal: 100}
	data, err := json.Marshal(stored)
	assert.NoError(t, err)
	path := filepath.Join(dir, "cart_device-1.json")
	assert.NoError(t, os.WriteFile(path, data, 0o644))

	//古い（未知の）スキーマは読まずに捨てる
	got := s.Read("device-1")
	assert.Empty(t, got.Items)
	assert.Equal(t, int64(0), got.TotalItems)
}

func TestFileStore_OverwriteKeepsLatest(t *testing.T) {
	s, err := NewFileStore(t.TempDir())
	assert.NoError(t, err)

	first := testCart(t)
	assert.NoError(t, s.Write("device-1", first))

	second := cart.Clear()
	assert.NoError(t, s.Write("device-1", second))

	got := s.Read("device-1")
	assert.Empty(t, got.Items)
}

func TestFileStore_RejectsUnsafeDeviceID(t *testing.T) {
	s, err := NewFileStore(t.TempDir())
	assert.NoError(t, err)

	//パスに化ける端末IDは書き込み拒否、読み込みは空カート
	assert.Error(t, s.Write("../etc/passwd", testCart(t)))
	assert.Error(t, s.Write("", testCart(t)))
	assert.Error(t, s.Write(".hidden", testCart(t)))

	got := s.Read("../etc/passwd")
	assert.Empty(t, got.Items)
}

func TestNewFileStore_RequiresDir(t *testing.T) {
	_, err := NewFileStore("  ")
	assert.Error(t, err)
}
