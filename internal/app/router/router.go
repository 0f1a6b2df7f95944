// Package router wires the HTTP routes of the service.
package router

import (
	"html/template"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	authhandler "crop_yield/internal/feature/auth/transport/handler"
	naventity "crop_yield/internal/feature/navigation/domain/entity"
	navhandler "crop_yield/internal/feature/navigation/transport/handler"
	predictionhandler "crop_yield/internal/feature/prediction/transport/handler"
)

// Handlers groups the feature handlers mounted by NewRouter.
type Handlers struct {
	Auth       *authhandler.AuthHandler
	Pages      *navhandler.PageHandler
	Prediction *predictionhandler.PredictionHandler
}

// Options carries the middleware and platform endpoints around the feature handlers.
type Options struct {
	Templates    *template.Template
	Session      gin.HandlerFunc // loads and saves the navigation session
	APISession   gin.HandlerFunc // read-only session for /api; falls back to Session
	LoginLimiter gin.HandlerFunc // applied to login and register
	Health       gin.HandlerFunc
	Metrics      http.Handler
	CORSOrigins  []string // allowed origins for /api; empty disables CORS
}

func NewRouter(h Handlers, opts Options) *gin.Engine {
	r := gin.Default()
	r.SetHTMLTemplate(opts.Templates)

	// 導通確認用
	r.GET("/healthz", opts.Health)
	r.HEAD("/healthz", opts.Health)
	if opts.Metrics != nil {
		r.GET("/metrics", gin.WrapH(opts.Metrics))
	}

	// セッションが必要なルート
	pages := r.Group("/")
	pages.Use(opts.Session)
	{
		pages.GET("/", h.Pages.Root)

		limited := pages.Group("/")
		if opts.LoginLimiter != nil {
			limited.Use(opts.LoginLimiter)
		}
		limited.GET("/login", h.Auth.ShowLogin)
		limited.POST("/login", h.Auth.Login)
		limited.GET("/register", h.Auth.ShowRegister)
		limited.POST("/register", h.Auth.Register)

		pages.POST("/logout", h.Auth.Logout)
		pages.GET("/home", h.Pages.Show(naventity.PageHome))
		pages.GET("/about", h.Pages.Show(naventity.PageAbout))
		pages.GET("/contact", h.Pages.Show(naventity.PageContact))
		pages.GET("/predict", h.Prediction.ShowForm)
		pages.POST("/predict", h.Prediction.Submit)
		pages.GET("/result", h.Prediction.ShowResult)
		pages.POST("/nav/:action", h.Pages.Navigate)
	}

	api := r.Group("/api/v1")
	if len(opts.CORSOrigins) > 0 {
		api.Use(cors.New(cors.Config{
			AllowOrigins:     opts.CORSOrigins,
			AllowMethods:     []string{http.MethodPost, http.MethodOptions},
			AllowHeaders:     []string{"Content-Type", "Authorization"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}
	if opts.APISession != nil {
		api.Use(opts.APISession)
	} else {
		api.Use(opts.Session)
	}
	api.POST("/predict", h.Prediction.PredictAPI)
	api.OPTIONS("/predict", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	return r
}
