package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Server struct {
	Host string
	Port int
}

type DB struct {
	Driver string
	Path   string
	Host   string
	Port   int
	User   string
	Pass   string
	Name   string
}

type OPNsense struct {
	Host       string
	Port       int
	User       string
	KeyPath    string
	AliasName  string
	RuleName   string
	Timeout    time.Duration
	MaxRetries int
	RetryDelay time.Duration
}

type Redis struct {
	Enabled bool
	Addr    string
	Channel string
}

type Importer struct {
	Enabled bool
	Path    string
}

type Admin struct {
	Username string
	Password string
}

type Config struct {
	Server   Server
	DB       DB
	OPNsense OPNsense
	Redis    Redis
	Importer Importer
	Admin    Admin
	JWT      struct {
		Secret string
		Issuer string
		ExpMin int
	}
}

func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	// Defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8443)
	v.SetDefault("db.driver", "sqlite")
	v.SetDefault("db.path", "homeguard.db")
	v.SetDefault("db.host", "127.0.0.1")
	v.SetDefault("db.port", 3306)
	v.SetDefault("db.user", "root")
	v.SetDefault("db.pass", "")
	v.SetDefault("db.name", "homeguard")
	v.SetDefault("opnsense.host", "192.168.1.1")
	v.SetDefault("opnsense.port", 22)
	v.SetDefault("opnsense.user", "root")
	v.SetDefault("opnsense.key_path", "~/.ssh/id_ed25519_opnsense")
	v.SetDefault("opnsense.alias_name", "ParentalControlMACs")
	v.SetDefault("opnsense.rule_name", "ParentalControlBlock")
	v.SetDefault("opnsense.timeout", "10s")
	v.SetDefault("opnsense.max_retries", 3)
	v.SetDefault("opnsense.retry_delay", "500ms")
	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.addr", "127.0.0.1:6379")
	v.SetDefault("redis.channel", "homeguard:events")
	v.SetDefault("importer.enabled", false)
	v.SetDefault("importer.path", "mac_addresses.txt")
	v.SetDefault("admin.username", "admin")
	v.SetDefault("admin.password", "admin123")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := &Config{
		Server: Server{Host: v.GetString("server.host"), Port: v.GetInt("server.port")},
		DB: DB{
			Driver: v.GetString("db.driver"),
			Path:   v.GetString("db.path"),
			Host:   v.GetString("db.host"),
			Port:   v.GetInt("db.port"),
			User:   v.GetString("db.user"),
			Pass:   v.GetString("db.pass"),
			Name:   v.GetString("db.name"),
		},
		OPNsense: OPNsense{
			Host:       v.GetString("opnsense.host"),
			Port:       v.GetInt("opnsense.port"),
			User:       v.GetString("opnsense.user"),
			KeyPath:    v.GetString("opnsense.key_path"),
			AliasName:  v.GetString("opnsense.alias_name"),
			RuleName:   v.GetString("opnsense.rule_name"),
			Timeout:    v.GetDuration("opnsense.timeout"),
			MaxRetries: v.GetInt("opnsense.max_retries"),
			RetryDelay: v.GetDuration("opnsense.retry_delay"),
		},
		Redis: Redis{
			Enabled: v.GetBool("redis.enabled"),
			Addr:    v.GetString("redis.addr"),
			Channel: v.GetString("redis.channel"),
		},
		Importer: Importer{
			Enabled: v.GetBool("importer.enabled"),
			Path:    v.GetString("importer.path"),
		},
		Admin: Admin{
			Username: v.GetString("admin.username"),
			Password: v.GetString("admin.password"),
		},
	}
	cfg.JWT.Secret = v.GetString("jwt.secret")
	if cfg.JWT.Secret == "" {
		cfg.JWT.Secret = "dev-secret"
	}
	cfg.JWT.Issuer = v.GetString("jwt.issuer")
	if cfg.JWT.Issuer == "" {
		cfg.JWT.Issuer = "homeguard"
	}
	cfg.JWT.ExpMin = v.GetInt("jwt.exp_min")
	if cfg.JWT.ExpMin <= 0 {
		cfg.JWT.ExpMin = 60
	}
	return cfg, nil
}
