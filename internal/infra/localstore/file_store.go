package localstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"agroshop/internal/domain/cart"
)

// 保存ファイルの形。カート本体に最終更新時刻を足したもの。
type storedCart struct {
	Version    int         `json:"version"`
	Items      []cart.Line `json:"items"`
	TotalItems int64       `json:"total_items"`
	Subtotal   int64       `json:"subtotal"`
	UpdatedAt  time.Time   `json:"updated_at"`
}

// FileStore は端末IDごとに1ファイルの versioned JSON でカートを保存する。
// 読み込みは壊れた値・バージョン不一致でも空カートへフェイルオープンし、
// 書き込みは一時ファイル＋renameで途中書き込みの断片を残さない。
type FileStore struct {
	dir string
}

func NewFileStore(dir string) (*FileStore, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("localstore: dir is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("localstore: create dir: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

// Read は保存済みカートを返す。ファイルが無い・JSONが壊れている・
// スキーマバージョンが現行と違う場合は、エラーにせず空カートを返す。
func (s *FileStore) Read(deviceID string) cart.Cart {
	path, err := s.path(deviceID)
	if err != nil {
		return cart.New()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cart.New()
	}

	var stored storedCart
	if err := json.Unmarshal(data, &stored); err != nil {
		return cart.New()
	}
	if stored.Version != cart.SchemaVersion {
		return cart.New()
	}

	items := stored.Items
	if items == nil {
		items = []cart.Line{}
	}
	return cart.Cart{
		Version:    stored.Version,
		Items:      items,
		TotalItems: stored.TotalItems,
		Subtotal:   stored.Subtotal,
	}
}

// Write はカート全体のスナップショットを保存する。失敗はエラーで返すが、
// 直前の保存値はそのまま残る（rename するまで上書きしない）。
func (s *FileStore) Write(deviceID string, c cart.Cart) error {
	path, err := s.path(deviceID)
	if err != nil {
		return err
	}

	stored := storedCart{
		Version:    c.Version,
		Items:      c.Items,
		TotalItems: c.TotalItems,
		Subtotal:   c.Subtotal,
		UpdatedAt:  time.Now(),
	}

	data, err := json.Marshal(stored)
	if err != nil {
		return fmt.Errorf("localstore: marshal: %w", err)
	}

	tmp, err := os.CreateTemp(s.dir, "cart-*.tmp")
	if err != nil {
		return fmt.Errorf("localstore: create temp: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("localstore: write: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("localstore: close: %w", err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("localstore: rename: %w", err)
	}
	return nil
}

// 端末IDをそのままファイル名に使うので、パスに化ける文字は拒否する。
func (s *FileStore) path(deviceID string) (string, error) {
	if deviceID == "" {
		return "", errors.New("localstore: device id is required")
	}
	for _, r := range deviceID {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '-' || r == '_' || r == '.':
		default:
			return "", fmt.Errorf("localstore: invalid device id %q", deviceID)
		}
	}
	if strings.HasPrefix(deviceID, ".") {
		return "", fmt.Errorf("localstore: invalid device id %q", deviceID)
	}
	return filepath.Join(s.dir, "cart_"+deviceID+".json"), nil
}
