package repository

import (
	"alignment_rooms/internal/models"
	"alignment_rooms/internal/storage"
)

// ShareRepository 分享記錄只新增不修改，所以沒有 Update 和 Delete
type ShareRepository interface {
	Create(share *models.AlignmentShare) error
	FindByRoomID(roomID uint) ([]models.AlignmentShare, error)
	FindByUserID(userID uint) ([]models.AlignmentShare, error)
}

type shareRepository struct {
	db *storage.PostgresDB
}

func NewShareRepository(db *storage.PostgresDB) ShareRepository {
	return &shareRepository{db: db}
}

func (r *shareRepository) Create(share *models.AlignmentShare) error {
	return r.db.Create(share).Error
}

func (r *shareRepository) FindByRoomID(roomID uint) ([]models.AlignmentShare, error) {
	var shares []models.AlignmentShare
	err := r.db.Where("room_id = ?", roomID).Order("created_at desc").Find(&shares).Error
	return shares, err
}

func (r *shareRepository) FindByUserID(userID uint) ([]models.AlignmentShare, error) {
	var shares []models.AlignmentShare
	err := r.db.Where("user_id = ?", userID).Order("created_at desc").Find(&shares).Error
	return shares, err
}
