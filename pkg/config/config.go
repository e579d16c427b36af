package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"
	"unicode/utf8"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

// AppConfig 全局配置实例
var AppConfig *Config

// Config 应用配置结构
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Data      DataConfig      `yaml:"data"`
	Dashboard DashboardConfig `yaml:"dashboard"`
	Log       LogConfig       `yaml:"log"`
	Security  SecurityConfig  `yaml:"security"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Port         string        `yaml:"port" env:"SERVER_PORT" default:"8801"`
	Mode         string        `yaml:"mode" env:"GIN_MODE" default:"debug"`
	ReadTimeout  time.Duration `yaml:"read_timeout" default:"30s"`
	WriteTimeout time.Duration `yaml:"write_timeout" default:"30s"`
}

// DataConfig 数据集配置
type DataConfig struct {
	File      string `yaml:"file" env:"DATA_FILE" default:"main_data.csv"`
	Separator string `yaml:"separator" default:","`
	Timezone  string `yaml:"timezone" env:"DATA_TIMEZONE" default:"UTC"`
}

// DashboardConfig 看板展示配置
type DashboardConfig struct {
	Title          string `yaml:"title" default:"E-Commerce Public Dashboard"`
	Caption        string `yaml:"caption"`
	TopN           int    `yaml:"top_n" default:"5"`
	CurrencyPrefix string `yaml:"currency_prefix" default:"AUD "`
	Locale         string `yaml:"locale" env:"DASHBOARD_LOCALE" default:"es-CO"`
	SidebarImage   string `yaml:"sidebar_image" env:"SIDEBAR_IMAGE"`
	SessionSecret  string `yaml:"session_secret" env:"SESSION_SECRET"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level    string `yaml:"level" env:"LOG_LEVEL" default:"info"` // debug, info, warn, error
	Output   string `yaml:"output" default:"stdout"` // stdout, file
	Dir      string `yaml:"dir" default:"logs"`
	SlowTime string `yaml:"slow_threshold" default:"500ms"`
}

// SecurityConfig 安全配置
type SecurityConfig struct {
	AllowedOrigins  []string `yaml:"allowed_origins"`
	RateLimit       int      `yaml:"rate_limit" default:"1000"` // 每分钟请求数
	EnableRateLimit bool     `yaml:"enable_rate_limit" default:"true"`
}

// InitConfig 初始化配置
func InitConfig() error {
	// 加载环境变量
	if err := loadEnv(); err != nil {
		log.Printf("Warning: failed to load .env file: %v", err)
	}

	configFile := os.Getenv("CONFIG_FILE")
	if configFile == "" {
		configFile = "config/config.yaml"
	}

	config, err := Load(configFile)
	if err != nil {
		return err
	}

	AppConfig = config
	return nil
}

// Load 默认值 -> 配置文件 -> 环境变量 -> 校验
func Load(configFile string) (*Config, error) {
	// 创建默认配置
	config := &Config{}
	setDefaults(config)

	// 尝试从配置文件加载
	if err := loadFromFile(config, configFile); err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to load config file %s: %w", configFile, err)
		}
		log.Printf("Warning: config file %s not found, using defaults", configFile)
	}

	// 从环境变量覆盖配置
	if err := loadFromEnv(config); err != nil {
		return nil, fmt.Errorf("failed to load config from environment: %w", err)
	}

	// 验证配置
	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

// loadEnv 加载环境变量文件
func loadEnv() error {
	env := os.Getenv("GO_ENV")
	if env == "" {
		env = "development"
	}

	envFiles := []string{
		".env",
		fmt.Sprintf(".env.%s", env),
		".env.local",
	}

	for _, file := range envFiles {
		if _, err := os.Stat(file); err == nil {
			if err := godotenv.Load(file); err != nil {
				return err
			}
		}
	}

	return nil
}

// setDefaults 设置默认值
func setDefaults(config *Config) {
	config.Server.Port = "8801"
	config.Server.Mode = "debug"
	config.Server.ReadTimeout = 30 * time.Second
	config.Server.WriteTimeout = 30 * time.Second

	config.Data.File = "main_data.csv"
	config.Data.Separator = ","
	config.Data.Timezone = "UTC"

	config.Dashboard.Title = "E-Commerce Public Dashboard"
	config.Dashboard.TopN = 5
	config.Dashboard.CurrencyPrefix = "AUD "
	config.Dashboard.Locale = "es-CO"

	config.Log.Level = "info"
	config.Log.Output = "stdout"
	config.Log.Dir = "logs"
	config.Log.SlowTime = "500ms"

	config.Security.RateLimit = 1000
	config.Security.EnableRateLimit = true
}

// loadFromFile 从配置文件加载
func loadFromFile(config *Config, configFile string) error {
	data, err := os.ReadFile(configFile)
	if err != nil {
		return err
	}

	return yaml.Unmarshal(data, config)
}

// loadFromEnv 从环境变量加载
func loadFromEnv(config *Config) error {
	// Server配置
	if port := os.Getenv("SERVER_PORT"); port != "" {
		config.Server.Port = port
	} else if port := os.Getenv("PORT"); port != "" {
		config.Server.Port = port
	}
	if mode := os.Getenv("GIN_MODE"); mode != "" {
		config.Server.Mode = mode
	}

	// 日志配置
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		config.Log.Level = strings.ToLower(level)
	}

	// 数据集配置
	if file := os.Getenv("DATA_FILE"); file != "" {
		config.Data.File = file
	}
	if tz := os.Getenv("DATA_TIMEZONE"); tz != "" {
		config.Data.Timezone = tz
	}

	// 看板配置
	if locale := os.Getenv("DASHBOARD_LOCALE"); locale != "" {
		config.Dashboard.Locale = locale
	}
	if topN := os.Getenv("DASHBOARD_TOP_N"); topN != "" {
		n, err := strconv.Atoi(topN)
		if err != nil {
			return fmt.Errorf("invalid DASHBOARD_TOP_N: %w", err)
		}
		config.Dashboard.TopN = n
	}
	if image := os.Getenv("SIDEBAR_IMAGE"); image != "" {
		config.Dashboard.SidebarImage = image
	}
	if secret := os.Getenv("SESSION_SECRET"); secret != "" {
		config.Dashboard.SessionSecret = secret
	}

	// 安全配置
	if origins := os.Getenv("ALLOWED_ORIGINS"); origins != "" {
		config.Security.AllowedOrigins = nil
		for _, origin := range strings.Split(origins, ",") {
			if origin = strings.TrimSpace(origin); origin != "" {
				config.Security.AllowedOrigins = append(config.Security.AllowedOrigins, origin)
			}
		}
	}

	return nil
}

// validateConfig 验证配置
func validateConfig(config *Config) error {
	// 验证必需的配置项
	if config.Data.File == "" {
		return fmt.Errorf("data file is required")
	}

	// 验证端口号
	if _, err := strconv.Atoi(strings.TrimPrefix(config.Server.Port, ":")); err != nil {
		return fmt.Errorf("invalid server port: %s", config.Server.Port)
	}

	// 验证模式
	validModes := []string{"debug", "release", "test"}
	modeValid := false
	for _, mode := range validModes {
		if config.Server.Mode == mode {
			modeValid = true
			break
		}
	}
	if !modeValid {
		return fmt.Errorf("invalid server mode: %s", config.Server.Mode)
	}

	if utf8.RuneCountInString(config.Data.Separator) != 1 {
		return fmt.Errorf("data separator must be a single character: %q", config.Data.Separator)
	}
	if _, err := time.LoadLocation(config.Data.Timezone); err != nil {
		return fmt.Errorf("invalid data timezone %s: %w", config.Data.Timezone, err)
	}

	if config.Dashboard.TopN <= 0 {
		return fmt.Errorf("dashboard top_n must be positive: %d", config.Dashboard.TopN)
	}

	if _, ok := logLevels[config.Log.Level]; !ok {
		return fmt.Errorf("invalid log level: %s", config.Log.Level)
	}

	if _, err := time.ParseDuration(config.Log.SlowTime); err != nil {
		return fmt.Errorf("invalid log slow_threshold: %s", config.Log.SlowTime)
	}

	return nil
}

// GetConfig 获取配置实例
func GetConfig() *Config {
	if AppConfig == nil {
		log.Fatal("config not initialized, call InitConfig() first")
	}
	return AppConfig
}

// SeparatorRune 数据集分隔符
func (c DataConfig) SeparatorRune() rune {
	r, _ := utf8.DecodeRuneInString(c.Separator)
	return r
}

// Location 数据集时间戳所在时区
func (c DataConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// SlowThreshold 慢请求阈值
func (c LogConfig) SlowThreshold() time.Duration {
	d, err := time.ParseDuration(c.SlowTime)
	if err != nil {
		return 500 * time.Millisecond
	}
	return d
}

// logLevels 日志级别由低到高
var logLevels = map[string]int{
	"debug": 0,
	"info":  1,
	"warn":  2,
	"error": 3,
}

// Allows 该级别的日志是否输出，未设置级别时按 info 处理
func (c LogConfig) Allows(level string) bool {
	current, ok := logLevels[c.Level]
	if !ok {
		current = logLevels["info"]
	}
	return logLevels[level] >= current
}
