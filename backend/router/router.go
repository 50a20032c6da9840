package router

import (
	"net/http"

	"homeguard/backend/app/controllers"
	"homeguard/backend/app/middleware"
)

func NewRouter(statusCtrl *controllers.StatusController, authCtrl *controllers.AuthController, deviceCtrl *controllers.DeviceController, auditCtrl *controllers.AuditController, mw *middleware.Auth) http.Handler {
	mux := http.NewServeMux()

	// public
	mux.HandleFunc("/health", statusCtrl.Health)
	mux.HandleFunc("/login", authCtrl.Login)
	mux.HandleFunc("/api/status", statusCtrl.Status)

	// authenticated
	mux.Handle("/api/toggle", mw.RequireAuth(http.HandlerFunc(statusCtrl.PostToggle)))
	mux.Handle("/api/devices/sync", mw.RequireAuth(http.HandlerFunc(statusCtrl.PostSync)))
	mux.Handle("/api/mac/devices", mw.RequireAuth(http.HandlerFunc(deviceCtrl.Collection)))
	mux.Handle("/api/mac/devices/", mw.RequireAuth(http.HandlerFunc(deviceCtrl.Item)))

	// admin-only
	mux.Handle("/api/audit", mw.RequireAdmin(http.HandlerFunc(auditCtrl.Recent)))

	return mux
}
