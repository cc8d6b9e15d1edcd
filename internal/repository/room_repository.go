package repository

import (
	"alignment_rooms/internal/models"
	"alignment_rooms/internal/storage"
)

type RoomRepository interface {
	Create(room *models.Room) error
	FindByID(id uint) (*models.Room, error)
	Update(room *models.Room) error
	FindAllActive() ([]models.Room, error)
	Count() (int64, error)
}

type roomRepository struct {
	db *storage.PostgresDB
}

func NewRoomRepository(db *storage.PostgresDB) RoomRepository {
	return &roomRepository{db: db}
}

func (r *roomRepository) Create(room *models.Room) error {
	return r.db.Create(room).Error
}

func (r *roomRepository) FindByID(id uint) (*models.Room, error) {
	var room models.Room
	err := r.db.First(&room, id).Error
	if err != nil {
		return nil, err
	}
	return &room, nil
}

func (r *roomRepository) Update(room *models.Room) error {
	return r.db.Save(room).Error
}

// FindAllActive 查詢所有開放中的房間，依建立順序排列
func (r *roomRepository) FindAllActive() ([]models.Room, error) {
	var rooms []models.Room
	err := r.db.Where("is_active = ?", true).Order("id asc").Find(&rooms).Error
	return rooms, err
}

func (r *roomRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&models.Room{}).Count(&count).Error
	return count, err
}
