package config

import (
	"log"
	"os"
	"strings"

	"github.com/spf13/viper"
)

type HTTP struct {
	Host            string
	Port            int
	ReadTimeoutSec  int
	WriteTimeoutSec int
	IdleTimeoutSec  int
}

type App struct {
	Name string
	Env  string // production / development
	HTTP HTTP
}

type Log struct {
	Level      string
	JSON       bool
	File       string // 非空则写文件并按大小切割
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

type DB struct {
	Driver             string // mysql / postgres
	DSN                string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeMin int
	AutoMigrate        bool
	LogLevel           string
}

type Redis struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type Session struct {
	TTLMin     int    `mapstructure:"ttlmin"`
	CookieName string `mapstructure:"cookiename"`
}

type CORS struct {
	Origin string
}

type Config struct {
	App     App
	Log     Log
	DB      DB
	Redis   Redis `mapstructure:"redis"`
	Session Session
	CORS    CORS
}

func (c *Config) Production() bool { return c.App.Env == "production" }

func Load(path string) *Config {
	v := viper.New()
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
		if path == "" {
			path = "./configs/config.local.yaml"
		}
	}
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("APP")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		log.Fatalf("read config: %v", err)
	}
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		log.Fatalf("unmarshal config: %v", err)
	}
	return &c
}
