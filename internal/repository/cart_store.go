package repository

import (
	"context"

	"agroshop/internal/domain/cart"
)

// 端末ローカルのカート保存。耐久性の土台で、認証状態に関係なく
// すべての変更が必ずここへ書かれる。
//
// Read は保存値が無い・壊れている・スキーマバージョンが合わない場合も
// エラーにせず空カートへフェイルオープンする。Write は失敗をエラーで
// 報告するだけで、呼び出し側の処理は止めない。
type LocalCartStore interface {
	Read(deviceID string) cart.Cart
	Write(deviceID string, c cart.Cart) error
}

// ユーザーごとのリモートカートドキュメント。認証済みセッションの
// 変更だけがここへ書かれる。
//
// Read は「まだ無い」を found=false で明示的に返す（エラーではない）。
// Write は user_id キーの upsert。ネットワーク・権限の失敗は握り潰さず
// エラーとして返す（呼び出し側が再送を判断する）。
type RemoteCartStore interface {
	Read(ctx context.Context, userID string) (cart.Cart, bool, error)
	Write(ctx context.Context, userID string, c cart.Cart) error
}
