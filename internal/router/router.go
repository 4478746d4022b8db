// Package router registers the HTTP routes of the API.
package router

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/memo-auth-api/internal/handler"
)

// Handlers are the route targets.  Metrics may be nil to hide /metrics.
type Handlers struct {
	Auth    *handler.AuthHandler
	Devices *handler.DeviceHandler
	Memos   *handler.MemoHandler
	Admin   *handler.AdminHandler
	Health  echo.HandlerFunc
	Metrics http.Handler
}

// RegisterRoutes mounts every route on e.  limit guards the credential
// endpoints (register, login).  Protected routes carry their gates in
// the handlers, so no auth middleware is attached here.
func RegisterRoutes(e *echo.Echo, h Handlers, limit echo.MiddlewareFunc) {
	if limit == nil {
		limit = func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}
	e.GET("/healthz", h.Health)
	if h.Metrics != nil {
		e.GET("/metrics", echo.WrapHandler(h.Metrics))
	}

	auth := e.Group("/v1/auth")
	auth.POST("/register", h.Auth.Register, limit)
	auth.POST("/login", h.Auth.Login, limit)
	auth.POST("/refresh", h.Auth.Refresh)
	auth.POST("/logout", h.Auth.Logout)

	v1 := e.Group("/v1")
	v1.GET("/me", h.Auth.Me)
	v1.PATCH("/me", h.Auth.UpdateMe)

	v1.GET("/devices", h.Devices.List)
	v1.POST("/devices", h.Devices.Register)
	v1.DELETE("/devices/:id", h.Devices.Delete)

	v1.GET("/memos", h.Memos.List)
	v1.POST("/memos", h.Memos.Create)
	v1.GET("/memos/:id", h.Memos.Get)
	v1.PUT("/memos/:id", h.Memos.Update)
	v1.DELETE("/memos/:id", h.Memos.Delete)

	admin := v1.Group("/admin")
	admin.GET("/users", h.Admin.ListUsers)
	admin.POST("/users", h.Admin.CreateUser)
	admin.DELETE("/users/:id", h.Admin.DeleteUser)
}
