package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config 应用全局配置结构体
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"db"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Auth      AuthConfig      `mapstructure:"auth"`
	SMS       SMSConfig       `mapstructure:"sms"`
	OTP       OTPConfig       `mapstructure:"otp"`
	Cache     CacheConfig     `mapstructure:"cache"`
	Log       LogConfig       `mapstructure:"log"`
	Bootstrap BootstrapConfig `mapstructure:"bootstrap"`
}

// ServerConfig HTTP 服务器配置
type ServerConfig struct {
	Port         int        `mapstructure:"port"`
	BaseURL      string     `mapstructure:"base_url"`
	MaxBodyBytes int64      `mapstructure:"max_body_bytes"`
	CORS         CORSConfig `mapstructure:"cors"`
}

// CORSConfig 跨域配置
type CORSConfig struct {
	AllowOrigins []string `mapstructure:"allow_origins"`
}

// DatabaseConfig PostgreSQL 数据库配置
type DatabaseConfig struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	Name            string `mapstructure:"name"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	SSLMode         string `mapstructure:"sslmode"`
	Timezone        string `mapstructure:"timezone"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`  // 分钟
	ConnMaxIdleTime int    `mapstructure:"conn_max_idle_time"` // 分钟
}

// DSN 生成 PostgreSQL 连接字符串
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s TimeZone=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode, c.Timezone,
	)
}

// RedisConfig Redis 配置（Token 黑名单、限流、缓存）
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// AuthConfig JWT 认证配置
type AuthConfig struct {
	JWTSecret       string        `mapstructure:"jwt_secret"`
	Issuer          string        `mapstructure:"issuer"`
	AccessTokenTTL  time.Duration `mapstructure:"access_token_ttl"`
	RefreshTokenTTL time.Duration `mapstructure:"refresh_token_ttl"`
}

// SMSConfig 短信网关配置
type SMSConfig struct {
	Enabled    bool          `mapstructure:"enabled"`
	GatewayURL string        `mapstructure:"gateway_url"`
	APIKey     string        `mapstructure:"api_key"`
	SenderID   string        `mapstructure:"sender_id"`
	Timeout    time.Duration `mapstructure:"timeout"`
	DrainSpec  string        `mapstructure:"drain_spec"` // cron 表达式（含秒）
	BatchSize  int           `mapstructure:"batch_size"` // 单次出队上限
}

// OTPConfig 验证码配置
type OTPConfig struct {
	TTL         time.Duration `mapstructure:"ttl"`
	RateLimit   int           `mapstructure:"rate_limit"`  // 窗口内单号码最大发送次数
	RateWindow  time.Duration `mapstructure:"rate_window"` // 限流窗口
	PurgeSpec   string        `mapstructure:"purge_spec"`
	PurgeMaxAge time.Duration `mapstructure:"purge_max_age"`
}

// CacheConfig 读缓存配置
type CacheConfig struct {
	TTL time.Duration `mapstructure:"ttl"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// BootstrapConfig 初始管理员；用户名为空时不创建
type BootstrapConfig struct {
	AdminUsername string `mapstructure:"admin_username"`
	AdminPassword string `mapstructure:"admin_password"`
}

// Load 从 .env、配置文件与环境变量加载配置
// 优先级：环境变量 > 配置文件 > 默认值
func Load(path string) (*Config, error) {
	// .env 不存在时忽略
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("读取 .env 失败: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("ACADEMIA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("读取配置文件失败: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.base_url", "http://localhost:8080")
	v.SetDefault("server.max_body_bytes", 1<<20)
	v.SetDefault("server.cors.allow_origins", []string{"http://localhost:3000"})

	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.name", "academia")
	v.SetDefault("db.user", "postgres")
	v.SetDefault("db.password", "")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.timezone", "Asia/Dhaka")
	v.SetDefault("db.max_open_conns", 25)
	v.SetDefault("db.max_idle_conns", 10)
	v.SetDefault("db.conn_max_lifetime", 60)
	v.SetDefault("db.conn_max_idle_time", 30)

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	// 无默认值的键也需登记，AutomaticEnv 才能在 Unmarshal 时读到环境变量
	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.issuer", "academia")
	v.SetDefault("auth.access_token_ttl", "30m")
	v.SetDefault("auth.refresh_token_ttl", "168h")

	v.SetDefault("sms.enabled", true)
	v.SetDefault("sms.gateway_url", "http://bulksmsbd.net/api/smsapi")
	v.SetDefault("sms.api_key", "")
	v.SetDefault("sms.sender_id", "")
	v.SetDefault("sms.timeout", "10s")
	v.SetDefault("sms.drain_spec", "*/30 * * * * *")
	v.SetDefault("sms.batch_size", 100)

	v.SetDefault("otp.ttl", "5m")
	v.SetDefault("otp.rate_limit", 3)
	v.SetDefault("otp.rate_window", "10m")
	v.SetDefault("otp.purge_spec", "0 0 3 * * *")
	v.SetDefault("otp.purge_max_age", "24h")

	v.SetDefault("cache.ttl", "10m")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("bootstrap.admin_username", "")
	v.SetDefault("bootstrap.admin_password", "")
}

// Validate 校验关键配置项
func (c *Config) Validate() error {
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("配置校验失败: auth.jwt_secret 不能为空")
	}
	if len(c.Auth.JWTSecret) < 16 {
		return fmt.Errorf("配置校验失败: auth.jwt_secret 长度不能少于 16 字符")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("配置校验失败: server.port 必须在 1-65535 之间")
	}
	if c.SMS.Enabled && c.SMS.GatewayURL == "" {
		return fmt.Errorf("配置校验失败: 启用短信时 sms.gateway_url 不能为空")
	}
	if c.SMS.BatchSize <= 0 {
		return fmt.Errorf("配置校验失败: sms.batch_size 必须大于 0")
	}
	if c.OTP.TTL <= 0 {
		return fmt.Errorf("配置校验失败: otp.ttl 必须大于 0")
	}
	if c.Bootstrap.AdminUsername != "" && len(c.Bootstrap.AdminPassword) < 8 {
		return fmt.Errorf("配置校验失败: bootstrap.admin_password 长度不能少于 8 字符")
	}
	return nil
}
