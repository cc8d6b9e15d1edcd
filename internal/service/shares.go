package service

import (
	"alignment_rooms/internal/models"
	"alignment_rooms/internal/repository"
)

// ShareService 分享記錄的唯讀查詢
// 建立走 SessionService.SubmitShare，因為要先通過發言權檢查
type ShareService struct {
	shareRepo repository.ShareRepository
}

func NewShareService(shareRepo repository.ShareRepository) *ShareService {
	return &ShareService{shareRepo: shareRepo}
}

// ListByRoom 房間內的分享記錄，新的在前
func (s *ShareService) ListByRoom(roomID uint) ([]models.AlignmentShare, error) {
	return s.shareRepo.FindByRoomID(roomID)
}

// ListByUser 用戶自己的分享記錄，新的在前
func (s *ShareService) ListByUser(userID uint) ([]models.AlignmentShare, error) {
	return s.shareRepo.FindByUserID(userID)
}
