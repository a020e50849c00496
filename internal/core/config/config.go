package config

import (
	"fmt"
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
	CORSOrigins     []string
}
type AdminHTTP struct {
	Host string
	Port int
}

type App struct {
	Name  string
	Env   string
	HTTP  HTTP
	Admin AdminHTTP
}

type Rotate struct {
	Enable     bool
	Filename   string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

type Log struct {
	Level  string
	JSON   bool
	Rotate Rotate
}

type JWT struct {
	Secret            string
	Issuer            string
	AccessTokenTTLMin int
}

type Redis struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type DB struct {
	Driver             string
	DSN                string
	Username           string
	Password           string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeMin int
	AutoMigrate        bool
	LogLevel           string
}

// Storage 记录持久化后端
type Storage struct {
	Driver         string // memory | redis | gorm
	KeyPrefix      string
	MemoryMaxBytes int // 仅 memory：模拟 localStorage 配额，0 不限
	SessionIdleMin int // 内存中的工作区闲置多久回收，0 不回收
}

type View struct {
	PageSize int
	Locale   string
}

type Config struct {
	App     App
	Log     Log
	JWT     JWT
	DB      DB
	Redis   Redis `mapstructure:"redis"`
	Storage Storage
	View    View
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "person-registry")
	v.SetDefault("app.env", "local")
	v.SetDefault("app.http.host", "0.0.0.0")
	v.SetDefault("app.http.port", 8080)
	v.SetDefault("app.http.readtimeoutsec", 5)
	v.SetDefault("app.http.writetimeoutsec", 10)
	v.SetDefault("app.http.idletimeoutsec", 60)
	v.SetDefault("app.admin.host", "127.0.0.1")
	v.SetDefault("app.admin.port", 8081)
	v.SetDefault("log.level", "info")
	v.SetDefault("jwt.issuer", "person-registry")
	v.SetDefault("jwt.accesstokenttlmin", 60*24*30)
	v.SetDefault("db.driver", "sqlite")
	v.SetDefault("db.dsn", "file:person-registry.db")
	v.SetDefault("db.maxopenconns", 10)
	v.SetDefault("db.maxidleconns", 5)
	v.SetDefault("db.connmaxlifetimemin", 30)
	v.SetDefault("db.automigrate", true)
	v.SetDefault("db.loglevel", "warn")
	v.SetDefault("storage.driver", "memory")
	v.SetDefault("storage.keyprefix", "pr")
	v.SetDefault("storage.sessionidlemin", 30)
	v.SetDefault("view.pagesize", 10)
	v.SetDefault("view.locale", "th")
}

// Read 读取 YAML + APP_ 前缀环境变量
func Read(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if c.JWT.Secret == "" {
		return nil, fmt.Errorf("config: jwt.secret is required")
	}
	return &c, nil
}

func Load(path string) *Config {
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
		if path == "" {
			path = "./configs/config.local.yaml"
		}
	}
	c, err := Read(path)
	if err != nil {
		log.Fatalf("%v", err)
	}
	return c
}
