// Package handler serves the dictionary's HTML pages.
package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/epikoding/dictionary/internal/dictionary"
	"github.com/epikoding/dictionary/internal/limiter"
	"github.com/epikoding/dictionary/internal/middleware"
	"github.com/epikoding/dictionary/internal/session"
	"github.com/epikoding/dictionary/internal/users"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

type RouterConfig struct {
	Service   *dictionary.Service
	Directory *users.Directory
	Limiter   *limiter.Limiter
	Sessions  middleware.SessionConfig
	Location  *time.Location
	Logger    *zap.Logger
	// TrustedProxies may set X-Forwarded-For. Empty trusts none, so the
	// login throttle keys on the socket address.
	TrustedProxies []string
}

func NewRouter(cfg RouterConfig) (*gin.Engine, error) {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	loc := cfg.Location
	if loc == nil {
		loc = time.UTC
	}
	if cfg.Sessions.Logger == nil {
		cfg.Sessions.Logger = log
	}

	tmpl, err := Templates(loc)
	if err != nil {
		return nil, err
	}

	authHandler := NewAuthHandler(cfg.Directory, cfg.Limiter, log)
	entryHandler := NewEntryHandler(cfg.Service, log)
	exportHandler := NewExportHandler(cfg.Service, log)

	r := gin.New()
	if err := r.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		return nil, fmt.Errorf("invalid trusted proxies: %w", err)
	}
	r.SetHTMLTemplate(tmpl)
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(log))
	r.Use(middleware.MetricsMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	pages := r.Group("/")
	pages.Use(middleware.SessionMiddleware(cfg.Sessions))
	{
		pages.GET("/", func(c *gin.Context) {
			switch middleware.Session(c).Phase() {
			case session.PhaseLoggedOut:
				authHandler.LoginPage(c)
			case session.PhaseEdit:
				entryHandler.EditPage(c)
			default:
				entryHandler.ListPage(c)
			}
		})
		pages.POST("/login", authHandler.Login)
		pages.POST("/logout", authHandler.Logout)

		protected := pages.Group("/")
		protected.Use(middleware.RequireLogin())
		{
			protected.POST("/entries", entryHandler.Create)
			protected.POST("/entries/:id/edit", entryHandler.StartEdit)
			protected.POST("/back", entryHandler.BackToList)
			protected.POST("/entries/:id", entryHandler.Update)
			protected.GET("/entries/:id/delete", entryHandler.ConfirmDelete)
			protected.POST("/entries/:id/delete", entryHandler.Delete)
			protected.GET("/export", exportHandler.Export)
		}
	}

	return r, nil
}
