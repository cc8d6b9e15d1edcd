package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"alignment_rooms/internal/service"
)

// RoomHandler 處理與房間相關的請求
type RoomHandler struct {
	roomService  *service.RoomService
	shareService *service.ShareService
}

// NewRoomHandler 創建一個新的 RoomHandler 實例
func NewRoomHandler(roomService *service.RoomService, shareService *service.ShareService) *RoomHandler {
	return &RoomHandler{
		roomService:  roomService,
		shareService: shareService,
	}
}

// ListRooms 房間列表與目前人數
func (h *RoomHandler) ListRooms(c *gin.Context) {
	rooms, err := h.roomService.List()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "無法搜尋房間列表"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"rooms": rooms})
}

// ListRoomShares 房間內的分享記錄，新的在前
func (h *RoomHandler) ListRoomShares(c *gin.Context) {
	roomID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "無效的房間 ID"})
		return
	}

	shares, err := h.shareService.ListByRoom(uint(roomID))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "無法搜尋分享記錄"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"shares": shares})
}

// ListMyShares 用戶自己的分享記錄，新的在前
func (h *RoomHandler) ListMyShares(c *gin.Context) {
	userID, _ := c.Get("userID")

	shares, err := h.shareService.ListByUser(userID.(uint))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "無法搜尋分享記錄"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"shares": shares})
}
