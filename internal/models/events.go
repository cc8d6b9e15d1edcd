package models

import (
	"time"

	"github.com/google/uuid"
)

// 客戶端送入的事件類型
const (
	EventJoin       = "join"
	EventLeave      = "leave"
	EventChat       = "chat"
	EventTransition = "transition"
	EventShare      = "share"
)

// 伺服器廣播的事件類型
const (
	EventJoined            = "joined"
	EventParticipantCount  = "participant_count"
	EventParticipantJoined = "participant_joined"
	EventParticipantLeft   = "participant_left"
	EventSessionState      = "session_state"
	EventChatMessage       = "chat_message"
	EventShared            = "shared"
	EventError             = "error"
)

// ClientEvent 代表一個從 WebSocket 連接收到的事件
// 各事件類型只使用自己需要的欄位
type ClientEvent struct {
	Type           string       `json:"type"`
	RoomID         uint         `json:"room_id,omitempty"`
	Content        string       `json:"content,omitempty"`
	NextState      SessionState `json:"next_state,omitempty"`
	CardID         string       `json:"card_id,omitempty"`
	ReflectionText string       `json:"reflection_text,omitempty"`
}

// ServerEvent 代表一個廣播給客戶端的事件信封
type ServerEvent struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// JoinedPayload 加入成功時只發給本人的快照
type JoinedPayload struct {
	RoomID           uint         `json:"room_id"`
	RoomName         RoomName     `json:"room_name"`
	ParticipantCount int          `json:"participant_count"`
	State            SessionState `json:"state"`
}

// ParticipantCountPayload 房間人數變動通知
type ParticipantCountPayload struct {
	RoomID uint `json:"room_id"`
	Count  int  `json:"count"`
}

// ParticipantPayload 參與者加入或離開通知
type ParticipantPayload struct {
	UserID      uint   `json:"user_id"`
	DisplayName string `json:"display_name"`
}

// SessionStatePayload 階段、發言者與時限的快照
type SessionStatePayload struct {
	RoomID            uint         `json:"room_id"`
	State             SessionState `json:"state"`
	CurrentSpeakerID  *uint        `json:"current_speaker_id"`
	SpeakerTurnEndsAt *time.Time   `json:"speaker_turn_ends_at"`
}

// ChatMessagePayload 聊天訊息，僅作為廣播事件存在，從不落庫
type ChatMessagePayload struct {
	ID         string    `json:"id"`
	SenderID   uint      `json:"sender_id"`
	SenderName string    `json:"sender_name"`
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"created_at"`
}

// SharedPayload 分享完成通知，不包含分享的內文
type SharedPayload struct {
	ShareID     uint      `json:"share_id"`
	UserID      uint      `json:"user_id"`
	DisplayName string    `json:"display_name"`
	CardID      string    `json:"card_id"`
	HasText     bool      `json:"has_text"`
	CreatedAt   time.Time `json:"created_at"`
}

// ErrorPayload 只送給出錯連接本身的類型化錯誤
type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// NewChatMessage 建立一則帶有新識別碼和伺服器時間戳的聊天訊息
func NewChatMessage(senderID uint, senderName, content string) ChatMessagePayload {
	return ChatMessagePayload{
		ID:         uuid.NewString(),
		SenderID:   senderID,
		SenderName: senderName,
		Content:    content,
		CreatedAt:  time.Now(),
	}
}
