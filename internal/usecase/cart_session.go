package usecase

import (
	"context"
	"log"
	"sync"
	"time"

	"agroshop/internal/domain/cart"
	repo "agroshop/internal/repository"
)

// セッションの状態遷移は uninitialized → guest → authenticated。
// サインアウトで authenticated → guest に戻る（カートは消さない）。
type SessionState string

const (
	StateUninitialized SessionState = "UNINITIALIZED"
	StateGuest         SessionState = "GUEST"
	StateAuthenticated SessionState = "AUTHENTICATED"
)

// リモート書き込みの再試行回数と初期待ち時間。
// 失敗してもローカルが正なので、使い切ったら次の変更時の全量upsertに任せる。
const (
	remoteWriteAttempts = 3
	remoteWriteBackoff  = 100 * time.Millisecond
)

// UIに返すカートのスナップショット。
// Synced=false はリモートへの反映が遅れているだけで、カート自体は有効。
type CartSnapshot struct {
	Items      []cart.Line `json:"items"`
	TotalItems int64       `json:"total_items"`
	Subtotal   int64       `json:"subtotal"`
	Version    int         `json:"version"`
	Synced     bool        `json:"synced"`
}

// CartSession は1端末ぶんのカートを持つコントローラ。
// カート本体の変換は純粋関数（domain/cart）に任せ、ここでは
// 「変換 → ローカル保存（常に）→ リモート保存（認証時のみ）→
// メモリ上の状態更新」という順序と直列化だけに責任を持つ。
type CartSession struct {
	// 変更は一度に1つ。後続の呼び出しはロック待ちの列に並ぶ。
	mu sync.Mutex

	deviceID string
	state    SessionState
	userID   string
	cart     cart.Cart

	// リモート書き込みが失敗したまま残っているか。
	// trueの間は次の変更・同期で全量を書き直す。
	dirty bool

	local  repo.LocalCartStore
	remote repo.RemoteCartStore
}

// newCartSession はローカル保存からカートを復元してguest状態で返す。
func newCartSession(deviceID string, local repo.LocalCartStore, remote repo.RemoteCartStore) *CartSession {
	s := &CartSession{
		deviceID: deviceID,
		state:    StateUninitialized,
		local:    local,
		remote:   remote,
	}

	// 起動時はローカルが唯一の情報源（フェイルオープンで必ず値が返る）
	s.cart = local.Read(deviceID)
	s.state = StateGuest
	return s
}

// Attach はサインイン完了時の guest → authenticated 遷移。
// ローカルとリモートを読み、統合し、結果を両方へ書き戻す。
// 同じユーザーでの再実行は何もしない（統合はキー単位で決定的なので、
// 再実行しても結果は変わらない）。
func (s *CartSession) Attach(ctx context.Context, userID string) error {
	if userID == "" {
		return ErrNotAuthenticated
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateAuthenticated && s.userID == userID {
		return nil
	}

	remoteCart, found, err := s.remote.Read(ctx, userID)
	if err != nil {
		// 同期できるまでguestのまま。次の認証付きリクエストで再試行される。
		return err
	}
	if !found {
		remoteCart = cart.New()
	}

	merged := cart.Merge(s.cart, remoteCart)

	if err := s.local.Write(s.deviceID, merged); err != nil {
		log.Printf("cart session %s: local write failed: %v", s.deviceID, err)
	}
	s.dirty = !s.writeRemote(ctx, userID, merged)

	s.cart = merged
	s.state = StateAuthenticated
	s.userID = userID
	return nil
}

// Detach はサインアウト時の authenticated → guest 遷移。
// カートはローカルに残したままにする。
func (s *CartSession) Detach() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = StateGuest
	s.userID = ""
	s.dirty = false
}

// Add は明細追加。Aggregate の純粋操作を適用してから永続化する。
func (s *CartSession) Add(ctx context.Context, p cart.ProductInfo, v cart.VariantInfo, quantity int64) (CartSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := cart.Add(s.cart, p, v, quantity)
	if err != nil {
		return CartSnapshot{}, err
	}
	return s.commit(ctx, next), nil
}

// UpdateQuantity は明細の数量変更。
func (s *CartSession) UpdateQuantity(ctx context.Context, productID, variantID, quantity int64) (CartSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := cart.UpdateQuantity(s.cart, productID, variantID, quantity)
	if err != nil {
		return CartSnapshot{}, err
	}
	return s.commit(ctx, next), nil
}

// Remove は明細削除。無い明細の削除も成功として扱う。
func (s *CartSession) Remove(ctx context.Context, productID, variantID int64) (CartSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.commit(ctx, cart.Remove(s.cart, productID, variantID)), nil
}

// Clear はカートを空に戻す（チェックアウト後・明示操作）。
func (s *CartSession) Clear(ctx context.Context) (CartSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.commit(ctx, cart.Clear()), nil
}

// Snapshot は現在のカートを返す。
func (s *CartSession) Snapshot() CartSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Contains は (productID, variantID) がカートにあるかどうか。
func (s *CartSession) Contains(productID, variantID int64) bool {
	_, ok := s.Item(productID, variantID)
	return ok
}

// Item は明細1件の取得。
func (s *CartSession) Item(productID, variantID int64) (cart.Line, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, l := range s.cart.Items {
		if l.ProductID == productID && l.VariantID == variantID {
			return l, true
		}
	}
	return cart.Line{}, false
}

// State は現在のセッション状態（テストと診断用）。
func (s *CartSession) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// commit は変換済みカートを永続化してメモリ上の状態を進める。呼び出し側がロック保持。
//
// ローカル書き込みは認証状態に関係なく必ず行う（耐久性の土台）。
// リモートはベストエフォート：失敗してもメモリとローカルは先に進み、
// dirtyフラグで次回の書き直しに繋ぐ。ロールバックはしない。
func (s *CartSession) commit(ctx context.Context, next cart.Cart) CartSnapshot {
	if err := s.local.Write(s.deviceID, next); err != nil {
		// ローカル保存が一時的に効かなくてもセッションはメモリ上で継続する
		log.Printf("cart session %s: local write failed: %v", s.deviceID, err)
	}

	if s.state == StateAuthenticated {
		s.dirty = !s.writeRemote(ctx, s.userID, next)
	}

	s.cart = next
	return s.snapshotLocked()
}

// writeRemote はバックオフ付きでリモートへupsertする。成功でtrue。
func (s *CartSession) writeRemote(ctx context.Context, userID string, c cart.Cart) bool {
	wait := remoteWriteBackoff
	for attempt := 1; attempt <= remoteWriteAttempts; attempt++ {
		err := s.remote.Write(ctx, userID, c)
		if err == nil {
			return true
		}
		if attempt == remoteWriteAttempts {
			log.Printf("cart session %s: remote write failed after %d attempts: %v", s.deviceID, attempt, err)
			return false
		}
		time.Sleep(wait)
		wait *= 2
	}
	return false
}

func (s *CartSession) snapshotLocked() CartSnapshot {
	items := make([]cart.Line, len(s.cart.Items))
	copy(items, s.cart.Items)

	return CartSnapshot{
		Items:      items,
		TotalItems: s.cart.TotalItems,
		Subtotal:   s.cart.Subtotal,
		Version:    s.cart.Version,
		Synced:     !s.dirty,
	}
}

// CartSessionManager は端末IDごとのセッションを生成・保持する。
// アンビエントなシングルトンにはせず、main で組み立てて注入する。
type CartSessionManager struct {
	mu       sync.Mutex
	sessions map[string]*CartSession
	local    repo.LocalCartStore
	remote   repo.RemoteCartStore
}

// DI
func NewCartSessionManager(local repo.LocalCartStore, remote repo.RemoteCartStore) *CartSessionManager {
	return &CartSessionManager{
		sessions: make(map[string]*CartSession),
		local:    local,
		remote:   remote,
	}
}

// Session は端末IDのセッションを返す（無ければローカル保存から復元して作る）。
func (m *CartSessionManager) Session(deviceID string) *CartSession {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.sessions[deviceID]; ok {
		return s
	}

	s := newCartSession(deviceID, m.local, m.remote)
	m.sessions[deviceID] = s
	return s
}

// Close はセッションを破棄する。カートはローカルに残っているので、
// 次に同じ端末IDで作り直せば復元される。
func (m *CartSessionManager) Close(deviceID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, deviceID)
}
