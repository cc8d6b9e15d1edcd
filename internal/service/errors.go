package service

import (
	"errors"
	"fmt"

	"alignment_rooms/internal/models"
)

// 協調器對外的錯誤碼，與 WebSocket error 事件的 code 欄位一一對應
const (
	CodeRoomNotFound      = "ROOM_NOT_FOUND"
	CodeRoomFull          = "ROOM_FULL"
	CodeUserNotSynced     = "USER_NOT_SYNCED"
	CodeNotInRoom         = "NOT_IN_ROOM"
	CodeInvalidTransition = "INVALID_TRANSITION"
	CodeNotSharingState   = "NOT_SHARING_STATE"
	CodeNotYourTurn       = "NOT_YOUR_TURN"
	CodeSessionNotFound   = "SESSION_NOT_FOUND"
	CodeInvalidPayload    = "INVALID_PAYLOAD"
	CodeOperationFailed   = "OPERATION_FAILED"
)

// CoordError 帶有錯誤碼的業務規則錯誤
// 只回報給出錯的連接本身，從不中斷其他參與者
type CoordError struct {
	Code    string
	Message string
}

func (e *CoordError) Error() string {
	return e.Message
}

var (
	ErrRoomNotFound    = &CoordError{Code: CodeRoomNotFound, Message: "Room not found or inactive"}
	ErrRoomFull        = &CoordError{Code: CodeRoomFull, Message: "Room is full. Maximum 7 participants."}
	ErrUserNotSynced   = &CoordError{Code: CodeUserNotSynced, Message: "Sync user first via /api/auth/sync"}
	ErrNotInRoom       = &CoordError{Code: CodeNotInRoom, Message: "You must be in the room to send messages"}
	ErrNotSharingState = &CoordError{Code: CodeNotSharingState, Message: "Sharing only allowed during OPTIONAL_SHARING"}
	ErrNotYourTurn     = &CoordError{Code: CodeNotYourTurn, Message: "One person speaks at a time"}
	ErrSessionNotFound = &CoordError{Code: CodeSessionNotFound, Message: "No active session"}
	ErrInvalidPayload  = &CoordError{Code: CodeInvalidPayload, Message: "Invalid payload"}
	// ErrOperationFailed 儲存層失敗時的通用錯誤，不洩漏內部細節
	ErrOperationFailed = &CoordError{Code: CodeOperationFailed, Message: "Operation failed"}
)

// NewInvalidTransition 帶上當前與目標階段，方便客戶端診斷
func NewInvalidTransition(current, target models.SessionState) *CoordError {
	return &CoordError{
		Code:    CodeInvalidTransition,
		Message: fmt.Sprintf("Cannot transition from %s to %s", current, target),
	}
}

// NewInvalidPayload 說明缺少哪些欄位
func NewInvalidPayload(message string) *CoordError {
	return &CoordError{Code: CodeInvalidPayload, Message: message}
}

// AsCoordError 取出錯誤鏈中的 CoordError，沒有則回傳 nil
func AsCoordError(err error) *CoordError {
	var ce *CoordError
	if errors.As(err, &ce) {
		return ce
	}
	return nil
}

// ErrorCode 取出錯誤碼，非業務錯誤一律視為 OPERATION_FAILED
func ErrorCode(err error) string {
	if ce := AsCoordError(err); ce != nil {
		return ce.Code
	}
	return CodeOperationFailed
}
