package config

import (
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type HTTP struct {
	Host              string
	Port              int
	ReadTimeoutSec    int
	WriteTimeoutSec   int
	IdleTimeoutSec    int
	RequestTimeoutSec int
	MaxBodyMB         int
	MaxInFlight       int64
}

type App struct {
	Name      string
	Env       string
	ClientURL string `mapstructure:"clientURL"`
	HTTP      HTTP
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
	Secret   string
	Issuer   string
	TTLHours int `mapstructure:"ttlHours"`
}

func (j JWT) TTL() time.Duration {
	if j.TTLHours <= 0 {
		return 7 * 24 * time.Hour
	}
	return time.Duration(j.TTLHours) * time.Hour
}

type Redis struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	// 仪表盘缓存秒数
	DashboardTTLSec int `mapstructure:"dashboardTTLSec"`
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

type Images struct {
	Backend          string // minio | gcs | none
	Bucket           string
	Endpoint         string
	AccessKey        string
	SecretKey        string
	UseSSL           bool   `mapstructure:"useSSL"`
	CredentialsFile  string `mapstructure:"credentialsFile"`
	ProjectID        string `mapstructure:"projectID"`
	PublicBaseURL    string `mapstructure:"publicBaseURL"`
	Prefix           string
	UploadTimeoutSec int
	MaxBytesMB       int
}

type Mail struct {
	Backend     string // brevo | amqp | pubsub | log
	SenderName  string
	SenderEmail string
	APIKey      string `mapstructure:"apiKey"`
	APIURL      string `mapstructure:"apiURL"`
	AMQPURL     string `mapstructure:"amqpURL"`
	Queue       string // amqp 队列名 / pubsub topic
	ProjectID   string `mapstructure:"projectID"`
	Credentials string `mapstructure:"credentialsFile"`
	TimeoutSec  int
}

type Admin struct {
	OwnerEmail string
}

type RateLimit struct {
	RPS       float64 `mapstructure:"rps"`
	Burst     int
	AuthRPS   float64 `mapstructure:"authRPS"`
	AuthBurst int
}

type Config struct {
	App       App
	Log       Log
	JWT       JWT
	DB        DB
	Redis     Redis `mapstructure:"redis"`
	Images    Images
	Mail      Mail
	Admin     Admin
	RateLimit RateLimit `mapstructure:"ratelimit"`
}

func Load(path string) *Config {
	c, err := Read(path)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	return c
}

// Read 加载顺序：.env → yaml → APP_ 前缀环境变量
func Read(path string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
		if path == "" {
			path = "./configs/config.local.yaml"
		}
	}
	setDefaults(v)
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("APP")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, err
	}
	return &c, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "column")
	v.SetDefault("app.env", "local")
	v.SetDefault("app.clientURL", "http://localhost:5173")
	v.SetDefault("app.http.host", "0.0.0.0")
	v.SetDefault("app.http.port", 8080)
	v.SetDefault("app.http.readTimeoutSec", 15)
	v.SetDefault("app.http.writeTimeoutSec", 60)
	v.SetDefault("app.http.idleTimeoutSec", 60)
	v.SetDefault("app.http.requestTimeoutSec", 45)
	v.SetDefault("app.http.maxBodyMB", 6)
	v.SetDefault("app.http.maxInFlight", 256)
	v.SetDefault("log.level", "info")
	v.SetDefault("jwt.issuer", "column")
	v.SetDefault("jwt.ttlHours", 168)
	v.SetDefault("db.driver", "sqlite")
	v.SetDefault("db.dsn", "file:column.db?_foreign_keys=off")
	v.SetDefault("db.maxOpenConns", 20)
	v.SetDefault("db.maxIdleConns", 10)
	v.SetDefault("db.connMaxLifetimeMin", 30)
	v.SetDefault("redis.dashboardTTLSec", 30)
	v.SetDefault("images.backend", "none")
	v.SetDefault("images.uploadTimeoutSec", 30)
	v.SetDefault("images.maxBytesMB", 5)
	v.SetDefault("images.prefix", "blog-covers")
	v.SetDefault("mail.backend", "log")
	v.SetDefault("mail.senderName", "Column")
	v.SetDefault("mail.apiURL", "https://api.brevo.com/v3/smtp/email")
	v.SetDefault("mail.timeoutSec", 10)
	v.SetDefault("mail.queue", "column.mail")
	v.SetDefault("ratelimit.rps", 100)
	v.SetDefault("ratelimit.burst", 200)
	v.SetDefault("ratelimit.authRPS", 1)
	v.SetDefault("ratelimit.authBurst", 10)
}
