package initialize

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"homeguard/backend/app/controllers"
	"homeguard/backend/app/db"
	"homeguard/backend/app/enforce"
	"homeguard/backend/app/events"
	jwtutil "homeguard/backend/app/jwt"
	"homeguard/backend/app/middleware"
	"homeguard/backend/app/models"
	"homeguard/backend/app/repo"
	"homeguard/backend/app/services"
	"homeguard/backend/config"
	"homeguard/backend/global"
	"homeguard/backend/router"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type App struct {
	Cfg      *config.Config
	DB       *gorm.DB
	Router   http.Handler
	Registry *services.RegistryService
	Toggle   *services.ToggleService
	Users    *services.UserService
}

func Build(configPath string) (*App, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	global.Config = cfg

	gdb, err := db.Connect(db.Config{
		Driver: cfg.DB.Driver, Path: cfg.DB.Path,
		Host: cfg.DB.Host, Port: cfg.DB.Port,
		User: cfg.DB.User, Password: cfg.DB.Pass, DBName: cfg.DB.Name,
	})
	if err != nil {
		return nil, fmt.Errorf("connect db: %w", err)
	}
	global.Mdb = gdb

	if err := gdb.AutoMigrate(&models.User{}, &models.Device{}, &models.ControlState{}, &models.AuditEntry{}); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}

	// Repos
	userRepo := repo.NewUserRepository(gdb)
	deviceRepo := repo.NewDeviceRepository(gdb)
	stateRepo := repo.NewControlStateRepository(gdb)
	auditRepo := repo.NewAuditRepository(gdb)

	// Enforcement channel
	runner, err := enforce.NewSSHRunner(cfg.OPNsense.Host, cfg.OPNsense.Port, cfg.OPNsense.User, expandPath(cfg.OPNsense.KeyPath), cfg.OPNsense.Timeout)
	if err != nil {
		return nil, fmt.Errorf("ssh runner: %w", err)
	}
	enforcer := enforce.NewOPNsense(runner,
		enforce.DefaultCommands(cfg.OPNsense.AliasName, cfg.OPNsense.RuleName),
		cfg.OPNsense.MaxRetries, cfg.OPNsense.RetryDelay, global.Logger)

	// Services
	userSvc := services.NewUserService(userRepo)
	registrySvc := services.NewRegistryService(deviceRepo, auditRepo)
	auditSvc := services.NewAuditService(auditRepo)
	toggleSvc := services.NewToggleService(registrySvc, stateRepo, auditRepo, enforcer, global.Logger).
		WithPlatforms(
			&enforce.LogPlatform{Platform: "nintendo", Log: global.Logger},
			&enforce.LogPlatform{Platform: "google-family", Log: global.Logger},
			&enforce.LogPlatform{Platform: "microsoft-family", Log: global.Logger},
		)

	if cfg.Redis.Enabled {
		global.Rdb = redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr})
		toggleSvc.WithEvents(events.NewPublisher(global.Rdb, cfg.Redis.Channel, global.Logger))
	}

	if err := userSvc.EnsureAdmin(cfg.Admin.Username, cfg.Admin.Password); err != nil {
		return nil, fmt.Errorf("ensure admin: %w", err)
	}

	// Controllers
	signer := &jwtutil.Signer{Secret: []byte(cfg.JWT.Secret), Issuer: cfg.JWT.Issuer, ExpMin: cfg.JWT.ExpMin}
	authCtrl := controllers.NewAuthController(userSvc, signer)
	statusCtrl := controllers.NewStatusController(toggleSvc, registrySvc)
	deviceCtrl := controllers.NewDeviceController(registrySvc, toggleSvc)
	auditCtrl := controllers.NewAuditController(auditSvc)
	mw := &middleware.Auth{Signer: signer}

	h := router.NewRouter(statusCtrl, authCtrl, deviceCtrl, auditCtrl, mw)
	h = middleware.Logging(h)

	return &App{Cfg: cfg, DB: gdb, Router: h, Registry: registrySvc, Toggle: toggleSvc, Users: userSvc}, nil
}

func expandPath(p string) string {
	if strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, p[2:])
		}
	}
	return p
}
