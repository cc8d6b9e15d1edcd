package repository

import (
	"alignment_rooms/internal/models"
	"alignment_rooms/internal/storage"
)

type SessionRepository interface {
	Create(session *models.RoomSession) error
	// FindByRoomID 依房間查詢當前會話
	// room_id 上的唯一索引保證最多只有一筆，不存在回傳 gorm.ErrRecordNotFound
	FindByRoomID(roomID uint) (*models.RoomSession, error)
	Update(session *models.RoomSession) error
}

type sessionRepository struct {
	db *storage.PostgresDB
}

func NewSessionRepository(db *storage.PostgresDB) SessionRepository {
	return &sessionRepository{db: db}
}

func (r *sessionRepository) Create(session *models.RoomSession) error {
	return r.db.Create(session).Error
}

func (r *sessionRepository) FindByRoomID(roomID uint) (*models.RoomSession, error) {
	var session models.RoomSession
	err := r.db.Where("room_id = ?", roomID).First(&session).Error
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *sessionRepository) Update(session *models.RoomSession) error {
	return r.db.Save(session).Error
}
