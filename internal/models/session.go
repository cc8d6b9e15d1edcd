package models

import (
	"time"

	"gorm.io/gorm"
)

// SessionState 定義會話階段的類型
type SessionState string

// 六個固定階段，嚴格線性推進，CLOSING 為終態
const (
	StateArrival       SessionState = "ARRIVAL"
	StateBreathing     SessionState = "BREATHING"
	StateIntention     SessionState = "INTENTION"
	StateCardSelection SessionState = "CARD_SELECTION"
	StateSharing       SessionState = "OPTIONAL_SHARING"
	StateClosing       SessionState = "CLOSING"
)

// stateSuccessors 每個非終態階段只有唯一的合法後繼，不可跳過也不可回退
var stateSuccessors = map[SessionState]SessionState{
	StateArrival:       StateBreathing,
	StateBreathing:     StateIntention,
	StateIntention:     StateCardSelection,
	StateCardSelection: StateSharing,
	StateSharing:       StateClosing,
}

// Successor 回傳階段的唯一合法後繼，終態或未知階段回傳 false
func (s SessionState) Successor() (SessionState, bool) {
	next, ok := stateSuccessors[s]
	return next, ok
}

// Valid 檢查是否為已定義的階段值
func (s SessionState) Valid() bool {
	if s == StateClosing {
		return true
	}
	_, ok := stateSuccessors[s]
	return ok
}

// SessionParticipant 會話名冊中的一位參與者，依加入順序排列
type SessionParticipant struct {
	UserID      uint      `json:"user_id"`
	DisplayName string    `json:"display_name"`
	JoinedAt    time.Time `json:"joined_at"`
}

// RoomSession 表示一個房間當前的即時會話狀態
// room_id 上的唯一索引保證每個房間恆有一個權威會話
type RoomSession struct {
	gorm.Model
	RoomID            uint                 `gorm:"uniqueIndex;not null"`
	RoomName          RoomName             `gorm:"not null"`
	State             SessionState         `gorm:"type:varchar(32);not null;default:'ARRIVAL'"`
	CurrentSpeakerID  *uint                // 發言者，只在 OPTIONAL_SHARING 階段有值
	SpeakerTurnEndsAt *time.Time           // 發言時限
	SpeakerQueue      []uint               `gorm:"serializer:json;type:jsonb"` // 等待發言的 FIFO 隊列
	Participants      []SessionParticipant `gorm:"serializer:json;type:jsonb"` // 名冊，依加入順序
	StartedAt         time.Time
}

// HasParticipant 檢查用戶是否在名冊中
func (s *RoomSession) HasParticipant(userID uint) bool {
	for _, p := range s.Participants {
		if p.UserID == userID {
			return true
		}
	}
	return false
}

// IsSpeaker 檢查用戶是否為當前發言者
func (s *RoomSession) IsSpeaker(userID uint) bool {
	return s.CurrentSpeakerID != nil && *s.CurrentSpeakerID == userID
}
