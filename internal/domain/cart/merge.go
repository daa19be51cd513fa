package cart

// Merge はログイン時に1回だけ走る、ゲストカートとリモートカートの統合。
//
// 方針：同じ (ProductID, VariantID) が両方にある場合はリモート側が正
// （別端末でアカウントが既に持っている内容を優先）。数量は合算しない。
// ローカルだけにある明細はリモートの後ろに追加し、リモートだけの明細は
// そのまま残す。合計は統合後の明細から必ず作り直す。
//
// リモートが空ならローカル、ローカルが空ならリモートがそのまま結果。
// キー単位で決定的なので、統合済みカート同士を再統合しても変化しない。
func Merge(local, remote Cart) Cart {
	items := make([]Line, 0, len(remote.Items)+len(local.Items))
	items = append(items, remote.Items...)

	for _, l := range local.Items {
		if indexOf(remote.Items, l.ProductID, l.VariantID) >= 0 {
			continue
		}
		items = append(items, l)
	}

	return rebuild(items)
}
