package service

import (
	"time"

	"alignment_rooms/internal/models"
	"alignment_rooms/internal/repository"
)

type UserService struct {
	userRepo repository.UserRepository
}

func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

func (s *UserService) CreateUser(user *models.User) error {
	return s.userRepo.Create(user)
}

func (s *UserService) GetUserByUsername(username string) (*models.User, error) {
	return s.userRepo.FindByUsername(username)
}

func (s *UserService) GetUserByID(id uint) (*models.User, error) {
	return s.userRepo.FindByID(id)
}

// SyncProfile 刷新已驗證身份的個人資料並回傳
// displayName 非空時一併更新，房間內的顯示屬性以此為準
func (s *UserService) SyncProfile(userID uint, displayName string) (*models.Profile, error) {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		return nil, err
	}

	if displayName != "" {
		user.DisplayName = displayName
	}
	user.LastLogin = time.Now()

	if err := s.userRepo.Update(user); err != nil {
		return nil, err
	}

	profile := user.ToProfile()
	return &profile, nil
}

// displayNameOf 房間內顯示名稱，未設定時退回用戶名
func displayNameOf(user *models.User) string {
	if user.DisplayName != "" {
		return user.DisplayName
	}
	return user.Username
}
