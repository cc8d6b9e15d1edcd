package service

import (
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"alignment_rooms/internal/models"
	"alignment_rooms/internal/repository"
)

// Broadcaster 向房間內所有連接發送事件的能力
// 由 WebSocketManager 實作，測試時可替換
type Broadcaster interface {
	BroadcastToRoom(roomID uint, event models.ServerEvent)
}

// SessionService 管理每個房間的即時會話：名冊、階段狀態機與發言權仲裁
type SessionService struct {
	sessionRepo  repository.SessionRepository
	shareRepo    repository.ShareRepository
	locks        *roomLocks
	relay        Broadcaster
	turnDuration time.Duration

	timersMu sync.Mutex
	timers   map[uint]*time.Timer // roomID -> 發言時限計時器
}

func NewSessionService(sessionRepo repository.SessionRepository, shareRepo repository.ShareRepository, locks *roomLocks, turnDuration time.Duration) *SessionService {
	return &SessionService{
		sessionRepo:  sessionRepo,
		shareRepo:    shareRepo,
		locks:        locks,
		turnDuration: turnDuration,
		timers:       make(map[uint]*time.Timer),
	}
}

// SetRelay 注入廣播器，服務建構後由 NewServices 呼叫一次
func (s *SessionService) SetRelay(relay Broadcaster) {
	s.relay = relay
}

// Transition 將會話推進到下一個階段
// 只有唯一合法後繼會成功，失敗時不做任何變動
func (s *SessionService) Transition(roomID uint, target models.SessionState) (*models.RoomSession, error) {
	lock := s.locks.get(roomID)
	lock.Lock()
	defer lock.Unlock()

	return s.transitionLocked(roomID, target)
}

func (s *SessionService) transitionLocked(roomID uint, target models.SessionState) (*models.RoomSession, error) {
	session, err := s.sessionRepo.FindByRoomID(roomID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionNotFound
		}
		log.Error().Err(err).Uint("room_id", roomID).Msg("load session failed")
		return nil, ErrOperationFailed
	}

	next, ok := session.State.Successor()
	if !ok || next != target {
		return nil, NewInvalidTransition(session.State, target)
	}

	// 每次轉換都會清掉發言者與時限，進入分享階段時再由仲裁重新指派
	s.stopTurnTimer(roomID)
	session.State = target
	session.CurrentSpeakerID = nil
	session.SpeakerTurnEndsAt = nil
	session.SpeakerQueue = nil

	if target == models.StateSharing {
		s.beginSharingLocked(session)
	}

	if err := s.sessionRepo.Update(session); err != nil {
		log.Error().Err(err).Uint("room_id", roomID).Msg("persist transition failed")
		return nil, ErrOperationFailed
	}

	s.broadcastSessionState(session)
	return session, nil
}

// beginSharingLocked 進入分享階段：名冊依加入順序排成發言隊列，
// 第一位成為發言者並起算時限，名冊為空則不指派
func (s *SessionService) beginSharingLocked(session *models.RoomSession) {
	if len(session.Participants) == 0 {
		return
	}

	queue := make([]uint, 0, len(session.Participants))
	for _, p := range session.Participants {
		queue = append(queue, p.UserID)
	}

	speaker := queue[0]
	session.CurrentSpeakerID = &speaker
	session.SpeakerQueue = queue[1:]
	ends := time.Now().Add(s.turnDuration)
	session.SpeakerTurnEndsAt = &ends

	s.scheduleTurnTimer(session.RoomID, speaker)
}

// SubmitShare 由當前發言者提交分享
// 只有會話處於分享階段且呼叫者持有發言權時才會成功
func (s *SessionService) SubmitShare(roomID, userID uint, cardID, reflectionText string) (*models.AlignmentShare, error) {
	lock := s.locks.get(roomID)
	lock.Lock()
	defer lock.Unlock()

	return s.submitShareLocked(roomID, userID, cardID, reflectionText)
}

func (s *SessionService) submitShareLocked(roomID, userID uint, cardID, reflectionText string) (*models.AlignmentShare, error) {
	session, err := s.sessionRepo.FindByRoomID(roomID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotSharingState
		}
		log.Error().Err(err).Uint("room_id", roomID).Msg("load session failed")
		return nil, ErrOperationFailed
	}

	if session.State != models.StateSharing {
		return nil, ErrNotSharingState
	}
	if !session.IsSpeaker(userID) {
		return nil, ErrNotYourTurn
	}

	share := &models.AlignmentShare{
		RoomID:         roomID,
		UserID:         userID,
		CardID:         cardID,
		ReflectionText: reflectionText,
	}
	if err := s.shareRepo.Create(share); err != nil {
		log.Error().Err(err).Uint("room_id", roomID).Msg("persist share failed")
		return nil, ErrOperationFailed
	}

	s.relay.BroadcastToRoom(roomID, models.ServerEvent{
		Type: models.EventShared,
		Data: models.SharedPayload{
			ShareID:     share.ID,
			UserID:      userID,
			DisplayName: s.rosterName(session, userID),
			CardID:      cardID,
			HasText:     reflectionText != "",
			CreatedAt:   share.CreatedAt,
		},
	})

	// 分享完成即交棒給隊列中的下一位
	s.advanceSpeakerLocked(session)
	if err := s.sessionRepo.Update(session); err != nil {
		log.Error().Err(err).Uint("room_id", roomID).Msg("persist speaker advance failed")
		return share, nil
	}
	s.broadcastSessionState(session)

	return share, nil
}

// advanceSpeakerLocked 把發言權交給隊列中的下一位
// 隊列耗盡時清空發言者與時限，階段轉換仍由客戶端發起
func (s *SessionService) advanceSpeakerLocked(session *models.RoomSession) {
	s.stopTurnTimer(session.RoomID)

	if len(session.SpeakerQueue) == 0 {
		session.CurrentSpeakerID = nil
		session.SpeakerTurnEndsAt = nil
		return
	}

	next := session.SpeakerQueue[0]
	session.SpeakerQueue = session.SpeakerQueue[1:]
	session.CurrentSpeakerID = &next
	ends := time.Now().Add(s.turnDuration)
	session.SpeakerTurnEndsAt = &ends

	s.scheduleTurnTimer(session.RoomID, next)
}

// getOrCreateLocked 取得房間的當前會話，沒有就以 ARRIVAL 階段建立
func (s *SessionService) getOrCreateLocked(room *models.Room) (*models.RoomSession, error) {
	session, err := s.sessionRepo.FindByRoomID(room.ID)
	if err == nil {
		return session, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	session = &models.RoomSession{
		RoomID:    room.ID,
		RoomName:  room.Name,
		State:     models.StateArrival,
		StartedAt: time.Now(),
	}
	if err := s.sessionRepo.Create(session); err != nil {
		return nil, err
	}
	return session, nil
}

// attachParticipantLocked 依 ID 冪等地把參與者附加到名冊尾端
func (s *SessionService) attachParticipantLocked(session *models.RoomSession, user *models.User) error {
	if session.HasParticipant(user.ID) {
		return nil
	}

	session.Participants = append(session.Participants, models.SessionParticipant{
		UserID:      user.ID,
		DisplayName: displayNameOf(user),
		JoinedAt:    time.Now(),
	})
	return s.sessionRepo.Update(session)
}

// detachParticipantLocked 把參與者自名冊與發言隊列移除
// 移除的是當前發言者時，發言權立刻交棒；名冊清空時會話原地重置回 ARRIVAL
func (s *SessionService) detachParticipantLocked(roomID, userID uint) error {
	session, err := s.sessionRepo.FindByRoomID(roomID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}

	removed := false
	for i, p := range session.Participants {
		if p.UserID == userID {
			session.Participants = append(session.Participants[:i], session.Participants[i+1:]...)
			removed = true
			break
		}
	}
	if !removed {
		return nil
	}

	for i, id := range session.SpeakerQueue {
		if id == userID {
			session.SpeakerQueue = append(session.SpeakerQueue[:i], session.SpeakerQueue[i+1:]...)
			break
		}
	}

	stateChanged := false
	if session.IsSpeaker(userID) {
		s.advanceSpeakerLocked(session)
		stateChanged = true
	}

	if len(session.Participants) == 0 {
		// 房間清空即結束這輪佔用，下一位加入者從頭開始
		s.stopTurnTimer(roomID)
		session.State = models.StateArrival
		session.CurrentSpeakerID = nil
		session.SpeakerTurnEndsAt = nil
		session.SpeakerQueue = nil
		session.StartedAt = time.Now()
		stateChanged = false // 沒有訂閱者了，重置不必廣播
	}

	if err := s.sessionRepo.Update(session); err != nil {
		return err
	}

	if stateChanged {
		s.broadcastSessionState(session)
	}
	return nil
}

// expireTurn 發言時限到期的回呼，把發言權交給下一位
// 取鎖後重新驗證狀態，過期的計時器不會動到已經換過的發言者
func (s *SessionService) expireTurn(roomID, speakerID uint) {
	lock := s.locks.get(roomID)
	lock.Lock()
	defer lock.Unlock()

	session, err := s.sessionRepo.FindByRoomID(roomID)
	if err != nil {
		return
	}
	if session.State != models.StateSharing || !session.IsSpeaker(speakerID) {
		return
	}

	log.Info().Uint("room_id", roomID).Uint("speaker_id", speakerID).Msg("speaker turn expired")

	s.advanceSpeakerLocked(session)
	if err := s.sessionRepo.Update(session); err != nil {
		log.Error().Err(err).Uint("room_id", roomID).Msg("persist turn expiry failed")
		return
	}
	s.broadcastSessionState(session)
}

func (s *SessionService) scheduleTurnTimer(roomID, speakerID uint) {
	s.timersMu.Lock()
	defer s.timersMu.Unlock()

	if t, ok := s.timers[roomID]; ok {
		t.Stop()
	}
	s.timers[roomID] = time.AfterFunc(s.turnDuration, func() {
		s.expireTurn(roomID, speakerID)
	})
}

func (s *SessionService) stopTurnTimer(roomID uint) {
	s.timersMu.Lock()
	defer s.timersMu.Unlock()

	if t, ok := s.timers[roomID]; ok {
		t.Stop()
		delete(s.timers, roomID)
	}
}

func (s *SessionService) broadcastSessionState(session *models.RoomSession) {
	s.relay.BroadcastToRoom(session.RoomID, models.ServerEvent{
		Type: models.EventSessionState,
		Data: models.SessionStatePayload{
			RoomID:            session.RoomID,
			State:             session.State,
			CurrentSpeakerID:  session.CurrentSpeakerID,
			SpeakerTurnEndsAt: session.SpeakerTurnEndsAt,
		},
	})
}

func (s *SessionService) rosterName(session *models.RoomSession, userID uint) string {
	for _, p := range session.Participants {
		if p.UserID == userID {
			return p.DisplayName
		}
	}
	return "Guest"
}
