package service

import (
	"time"

	"alignment_rooms/internal/repository"
)

type Services struct {
	User      *UserService
	Room      *RoomService
	Session   *SessionService
	Share     *ShareService
	WebSocket *WebSocketManager
}

func NewServices(repos *repository.Repositories, turnDuration time.Duration) *Services {
	locks := newRoomLocks()

	sessionService := NewSessionService(repos.Session, repos.Share, locks, turnDuration)
	roomService := NewRoomService(repos.Room, repos.User, sessionService, locks)
	wsManager := NewWebSocketManager(roomService, sessionService, locks)
	// 計時器觸發的發言交棒沒有發起連接，會話服務自己對房間廣播
	sessionService.SetRelay(wsManager)

	return &Services{
		User:      NewUserService(repos.User),
		Room:      roomService,
		Session:   sessionService,
		Share:     NewShareService(repos.Share),
		WebSocket: wsManager,
	}
}
