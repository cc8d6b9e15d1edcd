package models

import (
	"gorm.io/gorm"
)

// AlignmentShare 表示發言者分享內容的不可變記錄
// 只新增不修改：沒有編輯、回覆或刪除操作
// 協調器只儲存卡片的識別碼，從不解讀卡片內容
type AlignmentShare struct {
	gorm.Model
	RoomID         uint   `gorm:"index:idx_shares_room_created,priority:1;not null" json:"room_id"`
	UserID         uint   `gorm:"index;not null" json:"user_id"`
	CardID         string `gorm:"type:varchar(64);not null" json:"card_id"`
	ReflectionText string `gorm:"type:text" json:"reflection_text,omitempty"`
}
