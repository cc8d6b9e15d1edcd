package service

import (
	"errors"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"alignment_rooms/internal/models"
	"alignment_rooms/internal/repository"
)

// defaultRooms 啟動時播種的四個固定房間
var defaultRooms = []models.Room{
	{Name: models.RoomFireplace, EnvironmentType: models.EnvFire},
	{Name: models.RoomForest, EnvironmentType: models.EnvForest},
	{Name: models.RoomOcean, EnvironmentType: models.EnvWater},
	{Name: models.RoomNightSky, EnvironmentType: models.EnvStars},
}

// RoomService 房間目錄：固定房間的成員集合與容量上限
type RoomService struct {
	roomRepo repository.RoomRepository
	userRepo repository.UserRepository
	sessions *SessionService
	locks    *roomLocks
}

func NewRoomService(roomRepo repository.RoomRepository, userRepo repository.UserRepository, sessions *SessionService, locks *roomLocks) *RoomService {
	return &RoomService{
		roomRepo: roomRepo,
		userRepo: userRepo,
		sessions: sessions,
		locks:    locks,
	}
}

// EnsureDefaultRooms 房間表為空時播種固定房間，已有資料則不動
func (s *RoomService) EnsureDefaultRooms() error {
	count, err := s.roomRepo.Count()
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	for _, r := range defaultRooms {
		room := r
		room.Capacity = models.DefaultCapacity
		room.IsActive = true
		if err := s.roomRepo.Create(&room); err != nil {
			return err
		}
		log.Info().Str("room", string(room.Name)).Msg("seeded room")
	}
	return nil
}

// Join 把用戶加入房間並附加到會話名冊
// 容量檢查與寫入在房間鎖內完成，近乎同時的加入不會超收
// 已是成員時冪等：回傳現狀，不變動也不算新加入
func (s *RoomService) Join(roomID, userID uint) (*models.Room, *models.RoomSession, bool, error) {
	lock := s.locks.get(roomID)
	lock.Lock()
	defer lock.Unlock()

	return s.joinLocked(roomID, userID)
}

func (s *RoomService) joinLocked(roomID, userID uint) (*models.Room, *models.RoomSession, bool, error) {
	room, err := s.roomRepo.FindByID(roomID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, false, ErrRoomNotFound
		}
		log.Error().Err(err).Uint("room_id", roomID).Msg("load room failed")
		return nil, nil, false, ErrOperationFailed
	}
	if !room.IsActive {
		return nil, nil, false, ErrRoomNotFound
	}

	if room.HasParticipant(userID) {
		session, err := s.sessions.getOrCreateLocked(room)
		if err != nil {
			log.Error().Err(err).Uint("room_id", roomID).Msg("load session failed")
			return nil, nil, false, ErrOperationFailed
		}
		return room, session, false, nil
	}

	if room.IsFull() {
		return nil, nil, false, ErrRoomFull
	}

	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, false, ErrUserNotSynced
		}
		log.Error().Err(err).Uint("user_id", userID).Msg("load user failed")
		return nil, nil, false, ErrOperationFailed
	}

	room.ActiveParticipants = append(room.ActiveParticipants, userID)
	if err := s.roomRepo.Update(room); err != nil {
		log.Error().Err(err).Uint("room_id", roomID).Msg("persist join failed")
		return nil, nil, false, ErrOperationFailed
	}

	session, err := s.sessions.getOrCreateLocked(room)
	if err != nil {
		log.Error().Err(err).Uint("room_id", roomID).Msg("load session failed")
		return nil, nil, false, ErrOperationFailed
	}
	if err := s.sessions.attachParticipantLocked(session, user); err != nil {
		log.Error().Err(err).Uint("room_id", roomID).Msg("persist roster failed")
		return nil, nil, false, ErrOperationFailed
	}

	return room, session, true, nil
}

// Leave 把用戶移出房間與會話名冊
// 非成員時為冪等空操作：不報錯也不廣播
func (s *RoomService) Leave(roomID, userID uint) (bool, string, int, error) {
	lock := s.locks.get(roomID)
	lock.Lock()
	defer lock.Unlock()

	return s.leaveLocked(roomID, userID)
}

func (s *RoomService) leaveLocked(roomID, userID uint) (bool, string, int, error) {
	room, err := s.roomRepo.FindByID(roomID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, "", 0, nil
		}
		log.Error().Err(err).Uint("room_id", roomID).Msg("load room failed")
		return false, "", 0, ErrOperationFailed
	}

	if !room.RemoveParticipant(userID) {
		return false, "", len(room.ActiveParticipants), nil
	}

	if err := s.roomRepo.Update(room); err != nil {
		log.Error().Err(err).Uint("room_id", roomID).Msg("persist leave failed")
		return false, "", 0, ErrOperationFailed
	}

	// 先從名冊取顯示名稱再移除，離開廣播要用
	displayName := "Guest"
	if session, err := s.sessions.sessionRepo.FindByRoomID(roomID); err == nil {
		displayName = s.sessions.rosterName(session, userID)
	}

	if err := s.sessions.detachParticipantLocked(roomID, userID); err != nil {
		log.Error().Err(err).Uint("room_id", roomID).Msg("persist roster removal failed")
		return false, "", 0, ErrOperationFailed
	}

	return true, displayName, len(room.ActiveParticipants), nil
}

// List 房間列表與目前人數，給大廳顯示用
func (s *RoomService) List() ([]models.RoomInfo, error) {
	rooms, err := s.roomRepo.FindAllActive()
	if err != nil {
		return nil, err
	}

	infos := make([]models.RoomInfo, 0, len(rooms))
	for _, r := range rooms {
		infos = append(infos, models.RoomInfo{
			ID:               r.ID,
			Name:             r.Name,
			EnvironmentType:  r.EnvironmentType,
			Capacity:         r.Capacity,
			ParticipantCount: len(r.ActiveParticipants),
			CanJoin:          len(r.ActiveParticipants) < r.Capacity,
		})
	}
	return infos, nil
}
