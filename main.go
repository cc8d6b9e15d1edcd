package main

import (
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"alignment_rooms/internal/api"
	"alignment_rooms/internal/config"
	"alignment_rooms/internal/models"
	"alignment_rooms/internal/repository"
	"alignment_rooms/internal/service"
	"alignment_rooms/internal/storage"
	"alignment_rooms/internal/utils"
)

func main() {
	// 先初始化全局 logger，後面每一步都會用到
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	// 載入應用程式配置
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}

	utils.SetSecret(cfg.Auth.JWTSecret)

	// 初始化資料庫連接
	db, err := storage.NewPostgresDB(cfg.DB.Host, cfg.DB.User, cfg.DB.Password, cfg.DB.Name, cfg.DB.Port)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer db.Close()

	// 自動遷移資料庫結構
	if err := db.AutoMigrate(&models.User{}, &models.Room{}, &models.RoomSession{}, &models.AlignmentShare{}); err != nil {
		log.Fatal().Err(err).Msg("Failed to auto migrate database")
	}

	// 初始化 repositories 與 services
	repos := repository.NewRepositories(db)
	services := service.NewServices(repos, time.Duration(cfg.Session.TurnSeconds)*time.Second)

	// 房間表為空時播種四個固定房間
	if err := services.Room.EnsureDefaultRooms(); err != nil {
		log.Fatal().Err(err).Msg("Failed to seed rooms")
	}

	// 設置 Gin 路由
	gin.SetMode(cfg.Server.Mode)
	r := gin.Default()
	api.SetupRoutes(r, services)

	// 啟動伺服器
	log.Info().Str("address", cfg.Server.Address).Msg("server starting")
	if err := r.Run(cfg.Server.Address); err != nil {
		log.Fatal().Err(err).Msg("Failed to run server")
	}
}
