package repository

import "alignment_rooms/internal/storage"

type Repositories struct {
	User    UserRepository
	Room    RoomRepository
	Session SessionRepository
	Share   ShareRepository
}

func NewRepositories(db *storage.PostgresDB) *Repositories {
	return &Repositories{
		User:    NewUserRepository(db),
		Room:    NewRoomRepository(db),
		Session: NewSessionRepository(db),
		Share:   NewShareRepository(db),
	}
}
