package service

import (
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"alignment_rooms/internal/models"
)

// Client 代表一個已驗證的 WebSocket 連接
type Client struct {
	Conn        *websocket.Conn
	UserID      uint
	DisplayName string
	RoomID      uint                    // 目前所在房間，0 表示不在任何房間
	SendChan    chan models.ServerEvent // 消息發送通道，用於異步傳送事件
}

// WebSocketManager 廣播中繼：管理所有連接並把事件扇出到房間內的每個連接
// 傳遞是盡力而為、每個連接至多一次；沒有事件日誌也不重放，
// 重連的客戶端只會在重新加入時拿到一份新快照
type WebSocketManager struct {
	clients    map[uint]map[*Client]bool // 兩層 map: roomID -> client -> bool
	clientsMux sync.RWMutex              // 用於保護 clients map 的讀寫鎖

	rooms    *RoomService
	sessions *SessionService
	locks    *roomLocks
}

func NewWebSocketManager(rooms *RoomService, sessions *SessionService, locks *roomLocks) *WebSocketManager {
	return &WebSocketManager{
		clients:  make(map[uint]map[*Client]bool),
		rooms:    rooms,
		sessions: sessions,
		locks:    locks,
	}
}

// HandleConnection 處理一個已通過驗證的連接，阻塞直到連接關閉
func (m *WebSocketManager) HandleConnection(conn *websocket.Conn, user *models.User) {
	client := &Client{
		Conn:        conn,
		UserID:      user.ID,
		DisplayName: displayNameOf(user),
		SendChan:    make(chan models.ServerEvent, 256),
	}

	// 連接關閉時視同離開房間，並清理資源
	defer func() {
		m.performLeave(client)
		conn.Close()
		close(client.SendChan)
	}()

	go m.writePump(client)
	m.readPump(client)
}

// readPump 持續讀取並分派客戶端事件
func (m *WebSocketManager) readPump(client *Client) {
	client.Conn.SetReadLimit(4096)
	client.Conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	client.Conn.SetPongHandler(func(string) error {
		client.Conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		_, message, err := client.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Warn().Err(err).Uint("user_id", client.UserID).Msg("websocket unexpected close")
			}
			break
		}

		var event models.ClientEvent
		if err := json.Unmarshal(message, &event); err != nil {
			m.sendError(client, NewInvalidPayload("Malformed event"))
			continue
		}

		m.dispatch(client, event)
	}
}

// writePump 把發送通道中的事件寫出，並定期送出心跳
func (m *WebSocketManager) writePump(client *Client) {
	ticker := time.NewTicker(54 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case event, ok := <-client.SendChan:
			client.Conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				client.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := client.Conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			payload, err := json.Marshal(event)
			if err != nil {
				log.Error().Err(err).Msg("event encoding failed")
				w.Close()
				continue
			}
			if _, err := w.Write(payload); err != nil {
				return
			}
			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			client.Conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := client.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// dispatch 把事件路由到對應的處理函式
// 業務規則被拒絕時只回報給這個連接，不影響房間內其他人
func (m *WebSocketManager) dispatch(client *Client, event models.ClientEvent) {
	switch event.Type {
	case models.EventJoin:
		m.handleJoin(client, event)
	case models.EventLeave:
		m.performLeave(client)
	case models.EventChat:
		m.handleChat(client, event)
	case models.EventTransition:
		m.handleTransition(client, event)
	case models.EventShare:
		m.handleShare(client, event)
	default:
		m.sendError(client, NewInvalidPayload("Unknown event type"))
	}
}

func (m *WebSocketManager) handleJoin(client *Client, event models.ClientEvent) {
	if event.RoomID == 0 {
		m.sendError(client, NewInvalidPayload("room_id required"))
		return
	}

	// 換房間前先離開原本的
	if client.RoomID != 0 && client.RoomID != event.RoomID {
		m.performLeave(client)
	}

	lock := m.locks.get(event.RoomID)
	lock.Lock()
	defer lock.Unlock()

	room, session, joinedNow, err := m.rooms.joinLocked(event.RoomID, client.UserID)
	if err != nil {
		m.sendError(client, err)
		return
	}

	m.subscribe(client, event.RoomID)
	client.RoomID = event.RoomID

	// 新快照只發給本人，重複加入不會重播房間廣播
	m.sendToClient(client, models.ServerEvent{
		Type: models.EventJoined,
		Data: models.JoinedPayload{
			RoomID:           room.ID,
			RoomName:         room.Name,
			ParticipantCount: len(room.ActiveParticipants),
			State:            session.State,
		},
	})

	if !joinedNow {
		return
	}

	m.BroadcastToRoom(room.ID, models.ServerEvent{
		Type: models.EventParticipantCount,
		Data: models.ParticipantCountPayload{RoomID: room.ID, Count: len(room.ActiveParticipants)},
	})
	m.BroadcastToRoom(room.ID, models.ServerEvent{
		Type: models.EventParticipantJoined,
		Data: models.ParticipantPayload{UserID: client.UserID, DisplayName: client.DisplayName},
	})
}

// performLeave 離開目前的房間，不在任何房間時為無聲的空操作
func (m *WebSocketManager) performLeave(client *Client) {
	if client.RoomID == 0 {
		return
	}
	roomID := client.RoomID

	lock := m.locks.get(roomID)
	lock.Lock()
	defer lock.Unlock()

	m.unsubscribe(client, roomID)
	client.RoomID = 0

	removed, displayName, count, err := m.rooms.leaveLocked(roomID, client.UserID)
	if err != nil {
		log.Error().Err(err).Uint("room_id", roomID).Uint("user_id", client.UserID).Msg("leave failed")
		return
	}
	if !removed {
		return
	}

	m.BroadcastToRoom(roomID, models.ServerEvent{
		Type: models.EventParticipantLeft,
		Data: models.ParticipantPayload{UserID: client.UserID, DisplayName: displayName},
	})
	m.BroadcastToRoom(roomID, models.ServerEvent{
		Type: models.EventParticipantCount,
		Data: models.ParticipantCountPayload{RoomID: roomID, Count: count},
	})
}

func (m *WebSocketManager) handleChat(client *Client, event models.ClientEvent) {
	content := strings.TrimSpace(event.Content)
	if event.RoomID == 0 || content == "" {
		m.sendError(client, NewInvalidPayload("room_id and content required"))
		return
	}

	// 聊天只開放給房間成員，訊息是純廣播事件、從不落庫
	if client.RoomID != event.RoomID {
		m.sendError(client, ErrNotInRoom)
		return
	}

	m.BroadcastToRoom(event.RoomID, models.ServerEvent{
		Type: models.EventChatMessage,
		Data: models.NewChatMessage(client.UserID, client.DisplayName, content),
	})
}

func (m *WebSocketManager) handleTransition(client *Client, event models.ClientEvent) {
	if event.RoomID == 0 || event.NextState == "" {
		m.sendError(client, NewInvalidPayload("room_id and next_state required"))
		return
	}

	lock := m.locks.get(event.RoomID)
	lock.Lock()
	defer lock.Unlock()

	if _, err := m.sessions.transitionLocked(event.RoomID, event.NextState); err != nil {
		m.sendError(client, err)
	}
}

func (m *WebSocketManager) handleShare(client *Client, event models.ClientEvent) {
	if event.RoomID == 0 || event.CardID == "" {
		m.sendError(client, NewInvalidPayload("room_id and card_id required"))
		return
	}

	lock := m.locks.get(event.RoomID)
	lock.Lock()
	defer lock.Unlock()

	if _, err := m.sessions.submitShareLocked(event.RoomID, client.UserID, event.CardID, event.ReflectionText); err != nil {
		m.sendError(client, err)
	}
}

// BroadcastToRoom 向房間內的所有連接發送事件
// 發送通道滿了就丟棄這則事件：傳遞本來就是盡力而為
func (m *WebSocketManager) BroadcastToRoom(roomID uint, event models.ServerEvent) {
	m.clientsMux.RLock()
	defer m.clientsMux.RUnlock()

	for client := range m.clients[roomID] {
		select {
		case client.SendChan <- event:
		default:
			log.Warn().Uint("user_id", client.UserID).Uint("room_id", roomID).Msg("send buffer full, event dropped")
		}
	}
}

// RoomClientCount 房間目前的在線連接數
func (m *WebSocketManager) RoomClientCount(roomID uint) int {
	m.clientsMux.RLock()
	defer m.clientsMux.RUnlock()

	return len(m.clients[roomID])
}

func (m *WebSocketManager) subscribe(client *Client, roomID uint) {
	m.clientsMux.Lock()
	defer m.clientsMux.Unlock()

	if m.clients[roomID] == nil {
		m.clients[roomID] = make(map[*Client]bool)
	}
	m.clients[roomID][client] = true
}

func (m *WebSocketManager) unsubscribe(client *Client, roomID uint) {
	m.clientsMux.Lock()
	defer m.clientsMux.Unlock()

	if clients, ok := m.clients[roomID]; ok {
		delete(clients, client)
		if len(clients) == 0 {
			delete(m.clients, roomID)
		}
	}
}

func (m *WebSocketManager) sendToClient(client *Client, event models.ServerEvent) {
	select {
	case client.SendChan <- event:
	default:
		log.Warn().Uint("user_id", client.UserID).Msg("send buffer full, event dropped")
	}
}

func (m *WebSocketManager) sendError(client *Client, err error) {
	ce := AsCoordError(err)
	if ce == nil {
		ce = ErrOperationFailed
	}
	m.sendToClient(client, models.ServerEvent{
		Type: models.EventError,
		Data: models.ErrorPayload{Code: ce.Code, Message: ce.Message},
	})
}
