package model

import "time"

// ユーザーごとに1件のリモートカートドキュメント。
// payload はカート全体のJSONスナップショット。user_id キーの
// upsert で書くので、書き込みは何度やっても同じ結果になる。
type CartDocument struct {
	UserID    string    `gorm:"primaryKey;type:varchar(64)" json:"user_id"`
	Payload   string    `gorm:"type:jsonb;not null" json:"payload"`
	Version   int       `gorm:"not null" json:"version"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
