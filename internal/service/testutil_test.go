package service

import (
	"sync"
	"time"

	"gorm.io/gorm"

	"alignment_rooms/internal/models"
)

// 測試用的記憶體版 repositories，語義比照 gorm
// 查無資料回傳 gorm.ErrRecordNotFound，讀寫都複製一份避免共享底層切片

type memUserRepo struct {
	mu     sync.Mutex
	users  map[uint]*models.User
	nextID uint
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: make(map[uint]*models.User), nextID: 1}
}

func (r *memUserRepo) Create(user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user.ID = r.nextID
	r.nextID++
	user.CreatedAt = time.Now()
	clone := *user
	r.users[user.ID] = &clone
	return nil
}

func (r *memUserRepo) FindByID(id uint) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *user
	return &clone, nil
}

func (r *memUserRepo) FindByUsername(username string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.Username == username {
			clone := *user
			return &clone, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memUserRepo) Update(user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *user
	r.users[user.ID] = &clone
	return nil
}

type memRoomRepo struct {
	mu     sync.Mutex
	rooms  map[uint]*models.Room
	nextID uint
}

func newMemRoomRepo() *memRoomRepo {
	return &memRoomRepo{rooms: make(map[uint]*models.Room), nextID: 1}
}

func cloneRoom(room *models.Room) *models.Room {
	clone := *room
	clone.ActiveParticipants = append([]uint(nil), room.ActiveParticipants...)
	return &clone
}

func (r *memRoomRepo) Create(room *models.Room) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	room.ID = r.nextID
	r.nextID++
	room.CreatedAt = time.Now()
	r.rooms[room.ID] = cloneRoom(room)
	return nil
}

func (r *memRoomRepo) FindByID(id uint) (*models.Room, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	room, ok := r.rooms[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return cloneRoom(room), nil
}

func (r *memRoomRepo) Update(room *models.Room) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rooms[room.ID] = cloneRoom(room)
	return nil
}

func (r *memRoomRepo) FindAllActive() ([]models.Room, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var rooms []models.Room
	for id := uint(1); id < r.nextID; id++ {
		if room, ok := r.rooms[id]; ok && room.IsActive {
			rooms = append(rooms, *cloneRoom(room))
		}
	}
	return rooms, nil
}

func (r *memRoomRepo) Count() (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.rooms)), nil
}

type memSessionRepo struct {
	mu     sync.Mutex
	byRoom map[uint]*models.RoomSession
	nextID uint
}

func newMemSessionRepo() *memSessionRepo {
	return &memSessionRepo{byRoom: make(map[uint]*models.RoomSession), nextID: 1}
}

func cloneSession(session *models.RoomSession) *models.RoomSession {
	clone := *session
	clone.SpeakerQueue = append([]uint(nil), session.SpeakerQueue...)
	clone.Participants = append([]models.SessionParticipant(nil), session.Participants...)
	if session.CurrentSpeakerID != nil {
		v := *session.CurrentSpeakerID
		clone.CurrentSpeakerID = &v
	}
	if session.SpeakerTurnEndsAt != nil {
		v := *session.SpeakerTurnEndsAt
		clone.SpeakerTurnEndsAt = &v
	}
	return &clone
}

func (r *memSessionRepo) Create(session *models.RoomSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	session.ID = r.nextID
	r.nextID++
	session.CreatedAt = time.Now()
	r.byRoom[session.RoomID] = cloneSession(session)
	return nil
}

func (r *memSessionRepo) FindByRoomID(roomID uint) (*models.RoomSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	session, ok := r.byRoom[roomID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return cloneSession(session), nil
}

func (r *memSessionRepo) Update(session *models.RoomSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byRoom[session.RoomID] = cloneSession(session)
	return nil
}

type memShareRepo struct {
	mu     sync.Mutex
	shares []models.AlignmentShare
	nextID uint
}

func newMemShareRepo() *memShareRepo {
	return &memShareRepo{nextID: 1}
}

func (r *memShareRepo) Create(share *models.AlignmentShare) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	share.ID = r.nextID
	r.nextID++
	share.CreatedAt = time.Now()
	r.shares = append(r.shares, *share)
	return nil
}

func (r *memShareRepo) FindByRoomID(roomID uint) ([]models.AlignmentShare, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.AlignmentShare
	for i := len(r.shares) - 1; i >= 0; i-- {
		if r.shares[i].RoomID == roomID {
			out = append(out, r.shares[i])
		}
	}
	return out, nil
}

func (r *memShareRepo) FindByUserID(userID uint) ([]models.AlignmentShare, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.AlignmentShare
	for i := len(r.shares) - 1; i >= 0; i-- {
		if r.shares[i].UserID == userID {
			out = append(out, r.shares[i])
		}
	}
	return out, nil
}

func (r *memShareRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.shares)
}

// fakeRelay 記錄廣播過的事件，代替 WebSocketManager
type fakeRelay struct {
	mu     sync.Mutex
	events []models.ServerEvent
}

func (f *fakeRelay) BroadcastToRoom(roomID uint, event models.ServerEvent) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
}

func (f *fakeRelay) eventsOfType(eventType string) []models.ServerEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.ServerEvent
	for _, e := range f.events {
		if e.Type == eventType {
			out = append(out, e)
		}
	}
	return out
}

func (f *fakeRelay) lastOfType(eventType string) (models.ServerEvent, bool) {
	events := f.eventsOfType(eventType)
	if len(events) == 0 {
		return models.ServerEvent{}, false
	}
	return events[len(events)-1], true
}

// testEnv 用記憶體 repositories 組起來的一套協調器
type testEnv struct {
	userRepo    *memUserRepo
	roomRepo    *memRoomRepo
	sessionRepo *memSessionRepo
	shareRepo   *memShareRepo
	relay       *fakeRelay
	users       *UserService
	rooms       *RoomService
	sessions    *SessionService
	shares      *ShareService
}

func newTestEnv(turnDuration time.Duration) *testEnv {
	env := &testEnv{
		userRepo:    newMemUserRepo(),
		roomRepo:    newMemRoomRepo(),
		sessionRepo: newMemSessionRepo(),
		shareRepo:   newMemShareRepo(),
		relay:       &fakeRelay{},
	}

	locks := newRoomLocks()
	env.sessions = NewSessionService(env.sessionRepo, env.shareRepo, locks, turnDuration)
	env.sessions.SetRelay(env.relay)
	env.rooms = NewRoomService(env.roomRepo, env.userRepo, env.sessions, locks)
	env.users = NewUserService(env.userRepo)
	env.shares = NewShareService(env.shareRepo)
	return env
}

func (env *testEnv) createRoom(name models.RoomName, capacity int) *models.Room {
	room := &models.Room{
		Name:            name,
		EnvironmentType: models.EnvFire,
		Capacity:        capacity,
		IsActive:        true,
	}
	if err := env.roomRepo.Create(room); err != nil {
		panic(err)
	}
	return room
}

func (env *testEnv) createUser(username string) *models.User {
	user := &models.User{Username: username, Password: "x", DisplayName: username}
	if err := env.userRepo.Create(user); err != nil {
		panic(err)
	}
	return user
}

// advanceTo 把會話沿著線性順序推進到目標階段
func (env *testEnv) advanceTo(roomID uint, target models.SessionState) error {
	if target == models.StateArrival {
		return nil
	}
	order := []models.SessionState{
		models.StateBreathing,
		models.StateIntention,
		models.StateCardSelection,
		models.StateSharing,
		models.StateClosing,
	}
	for _, state := range order {
		if _, err := env.sessions.Transition(roomID, state); err != nil {
			return err
		}
		if state == target {
			return nil
		}
	}
	return nil
}
