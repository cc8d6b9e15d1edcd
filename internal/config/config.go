package config

import (
	"github.com/spf13/viper"
)

type Config struct {
	Server  ServerConfig
	DB      DBConfig
	Auth    AuthConfig
	Session SessionConfig
}

type ServerConfig struct {
	Address string
	Mode    string // gin 的運行模式 (debug/release)
}

type DBConfig struct {
	Host     string
	User     string
	Password string
	Name     string
	Port     int
}

type AuthConfig struct {
	JWTSecret string
}

type SessionConfig struct {
	TurnSeconds int // 分享階段每位發言者的時限（秒）
}

func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./config")
	viper.AddConfigPath(".")

	viper.SetDefault("server.address", ":8080")
	viper.SetDefault("server.mode", "release")
	viper.SetDefault("db.host", "localhost")
	viper.SetDefault("db.port", 5432)
	viper.SetDefault("session.turnseconds", 75)

	// 允許用環境變數覆寫，例如部署時注入 DB 密碼與 JWT 密鑰
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		// 找不到配置文件時使用預設值，其他錯誤照常回報
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}
