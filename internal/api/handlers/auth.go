package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"alignment_rooms/internal/models"
	"alignment_rooms/internal/service"
	"alignment_rooms/internal/utils"
)

// AuthHandler 處理與認證相關的請求
// 身份驗證是協調器之外的協作方，核心只消費驗證後的身份與顯示屬性
type AuthHandler struct {
	userService *service.UserService
}

// NewAuthHandler 創建一個新的 AuthHandler 實例
func NewAuthHandler(userService *service.UserService) *AuthHandler {
	return &AuthHandler{userService: userService}
}

// RegisterInput 定義註冊請求的結構
type RegisterInput struct {
	Username    string `json:"username" binding:"required"`
	Password    string `json:"password" binding:"required"`
	DisplayName string `json:"display_name"`
}

// LoginInput 定義登入請求的結構
type LoginInput struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// SyncInput 定義身份同步請求的結構
type SyncInput struct {
	DisplayName string `json:"display_name"`
}

// Register 處理用戶註冊
func (h *AuthHandler) Register(c *gin.Context) {
	var input RegisterInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// 對密碼進行加密
	hashedPassword, _ := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	user := models.User{
		Username:    input.Username,
		Password:    string(hashedPassword),
		DisplayName: input.DisplayName,
	}

	if err := h.userService.CreateUser(&user); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "創建使用者失敗"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "使用者註冊成功"})
}

// Login 處理用戶登入
func (h *AuthHandler) Login(c *gin.Context) {
	var input LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.userService.GetUserByUsername(input.Username)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid username or password"})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(input.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid username or password"})
		return
	}

	token, err := utils.GenerateToken(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "獲取token失敗"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token})
}

// Sync 刷新已驗證身份的個人資料並回傳
// 協調器把這份資料當作參與者顯示屬性的來源
func (h *AuthHandler) Sync(c *gin.Context) {
	userID, _ := c.Get("userID")

	var input SyncInput
	// 請求體可省略，只刷新最後登入時間
	_ = c.ShouldBindJSON(&input)

	profile, err := h.userService.SyncProfile(userID.(uint), input.DisplayName)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "同步使用者失敗"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": profile})
}
