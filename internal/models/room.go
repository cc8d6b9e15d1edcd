package models

import (
	"gorm.io/gorm"
)

// DefaultCapacity 每個房間的固定人數上限
const DefaultCapacity = 7

// RoomName 定義固定房間名稱的類型
type RoomName string

const (
	RoomFireplace RoomName = "Fireplace"
	RoomForest    RoomName = "Forest"
	RoomOcean     RoomName = "Ocean"
	RoomNightSky  RoomName = "NightSky"
)

// EnvironmentType 定義房間環境標籤的類型
type EnvironmentType string

const (
	EnvFire   EnvironmentType = "fire"
	EnvForest EnvironmentType = "forest"
	EnvWater  EnvironmentType = "water"
	EnvStars  EnvironmentType = "stars"
)

// Room 表示一個固定的引導對齊房間
// 房間在啟動時播種建立，正常營運下不會被刪除，只有 join/leave 會變動成員集合
type Room struct {
	gorm.Model
	Name               RoomName        `gorm:"uniqueIndex;not null"`
	EnvironmentType    EnvironmentType `gorm:"not null"`
	Capacity           int             `gorm:"not null;default:7"`
	ActiveParticipants []uint          `gorm:"serializer:json;type:jsonb"` // 目前在房間內的用戶 ID 集合
	IsActive           bool            `gorm:"default:true"`
}

// HasParticipant 檢查用戶是否已經在房間內
func (r *Room) HasParticipant(userID uint) bool {
	for _, id := range r.ActiveParticipants {
		if id == userID {
			return true
		}
	}
	return false
}

// IsFull 檢查房間是否已滿
func (r *Room) IsFull() bool {
	return len(r.ActiveParticipants) >= r.Capacity
}

// RemoveParticipant 從成員集合中移除用戶，回傳是否有移除
func (r *Room) RemoveParticipant(userID uint) bool {
	for i, id := range r.ActiveParticipants {
		if id == userID {
			r.ActiveParticipants = append(r.ActiveParticipants[:i], r.ActiveParticipants[i+1:]...)
			return true
		}
	}
	return false
}

// RoomInfo 是房間列表回傳的摘要
type RoomInfo struct {
	ID               uint            `json:"id"`
	Name             RoomName        `json:"name"`
	EnvironmentType  EnvironmentType `json:"environment_type"`
	Capacity         int             `json:"capacity"`
	ParticipantCount int             `json:"participant_count"`
	CanJoin          bool            `json:"can_join"`
}
