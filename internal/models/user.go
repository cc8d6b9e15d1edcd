package models

import (
	"time"

	"gorm.io/gorm"
)

// User 表示系統中已驗證的用戶
// 協調器本身只消費 ID 和顯示名稱，其餘欄位屬於身份驗證協作方
type User struct {
	gorm.Model            // 內嵌 gorm.Model，提供 ID、CreatedAt、UpdatedAt 和 DeletedAt 字段
	Username    string    `gorm:"uniqueIndex;not null" json:"username"` // 用戶名，必須唯一
	Password    string    `gorm:"not null" json:"-"`                    // 密碼雜湊，json 序列化時會被忽略
	DisplayName string    `json:"display_name"`                         // 房間內顯示的名稱
	LastLogin   time.Time `json:"last_login"`                           // 最後一次同步身份的時間
}

// Profile 是身份同步回傳給客戶端的資料
type Profile struct {
	ID          uint      `json:"id"`
	Username    string    `json:"username"`
	DisplayName string    `json:"display_name"`
	LastLogin   time.Time `json:"last_login"`
}

// ToProfile 轉換為對外的 Profile 結構
func (u *User) ToProfile() Profile {
	return Profile{
		ID:          u.ID,
		Username:    u.Username,
		DisplayName: u.DisplayName,
		LastLogin:   u.LastLogin,
	}
}
