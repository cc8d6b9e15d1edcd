package service

import "sync"

// roomLocks 每個房間一把互斥鎖
// 同一房間的所有變動操作（加入、離開、階段轉換、分享、時限到期）
// 都必須持有該房間的鎖，容量與發言權的檢查加寫入因此是原子的
// 不同房間之間互不阻塞
type roomLocks struct {
	mu    sync.Mutex
	locks map[uint]*sync.Mutex
}

func newRoomLocks() *roomLocks {
	return &roomLocks{locks: make(map[uint]*sync.Mutex)}
}

func (l *roomLocks) get(roomID uint) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()

	lock, ok := l.locks[roomID]
	if !ok {
		lock = &sync.Mutex{}
		l.locks[roomID] = lock
	}
	return lock
}
