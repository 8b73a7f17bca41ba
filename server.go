package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/mmdatafocus/drcm_backend/config"
	"github.com/mmdatafocus/drcm_backend/middlewares"
	"github.com/mmdatafocus/drcm_backend/models"
	"github.com/mmdatafocus/drcm_backend/utils"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

const defaultPort = "8080"

func newRouter(svc *models.Service, logger *logrus.Logger, ready func() bool) *gin.Engine {
	r := gin.New()
	// Case numbers may carry an escaped "/".
	r.UseRawPath = true
	r.UnescapePathValues = true
	r.Use(middlewares.CorrelationMiddleware())
	r.Use(func(c *gin.Context) {
		// Until Redis/MySQL are connected the API answers 503; the page and probes stay up.
		if strings.HasPrefix(c.Request.URL.Path, "/api/") && !ready() {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "service starting"})
			return
		}
		c.Next()
	})
	r.Use(cors.New(corsConfig()))
	r.Use(customErrorLogger(logger))
	r.Use(gin.Recovery())

	r.GET("/healthz", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/", indexHandler())

	api := r.Group("/api")
	api.GET("/departments", departmentsHandler(svc))
	api.POST("/access", accessHandler(svc))

	records := api.Group("/records", middlewares.AuthMiddleware())
	records.GET("", recordsHandler(svc))
	records.GET("/export.xlsx", exportHandler(svc))
	records.POST("/:caseNumber/preview", previewHandler(svc))
	records.PUT("/:caseNumber/pass-date", savePassDateHandler(svc))

	r.NoRoute(customNotFoundHandler)
	return r
}

// corsConfig requires an explicit CORS_ALLOWED_ORIGINS allowlist in production
// and allows every origin elsewhere.
func corsConfig() cors.Config {
	corsConfig := cors.DefaultConfig()
	allowedOrigins := strings.TrimSpace(os.Getenv("CORS_ALLOWED_ORIGINS"))
	if strings.EqualFold(strings.TrimSpace(os.Getenv("GO_ENV")), "production") {
		if allowedOrigins == "" {
			// Deny every cross-origin request until an allowlist is configured.
			corsConfig.AllowOriginFunc = func(string) bool { return false }
		} else {
			corsConfig.AllowOrigins = utils.SplitAndTrim(allowedOrigins)
		}
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AddAllowMethods("GET", "POST", "PUT", "OPTIONS")
	corsConfig.AddAllowHeaders("Origin", "Content-Type", "Authorization", "x-correlation-id")
	corsConfig.AddExposeHeaders("Content-Length", "Content-Disposition", "x-correlation-id")
	corsConfig.AllowCredentials = !corsConfig.AllowAllOrigins
	return corsConfig
}

func customNotFoundHandler(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{"error": "route not found"})
}

// customErrorLogger is a custom Gin middleware that logs only errors
func customErrorLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) > 0 {
			cid, _ := utils.GetCorrelationIdFromContext(c.Request.Context())
			logger.WithFields(logrus.Fields{
				"path":           c.Request.URL.Path,
				"correlation_id": cid,
			}).Error(c.Errors.String())
		}
	}
}

func main() {
	port := os.Getenv("API_PORT")
	if port == "" {
		// Cloud Run standard env var.
		port = os.Getenv("PORT")
	}
	if port == "" {
		port = defaultPort
	}

	logger := config.GetLogger()

	settings, err := config.LoadSettings()
	if err != nil {
		logger.WithFields(logrus.Fields{"field": "settings"}).Fatal(err.Error())
	}

	sigCtx, stopSignals := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stopSignals()

	svc, err := models.NewServiceFromSettings(sigCtx, settings)
	if err != nil {
		logger.WithFields(logrus.Fields{"field": "sheets"}).Fatal(err.Error())
	}

	var ready atomic.Bool
	if strings.EqualFold(os.Getenv("GO_ENV"), "production") {
		gin.SetMode(gin.ReleaseMode)
	}
	r := newRouter(svc, logger, ready.Load)

	// Start listening first, connect optional dependencies after.
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	serverErrCh := make(chan error, 1)
	go func() {
		serverErrCh <- srv.ListenAndServe()
	}()

	if settings.RedisAddress != "" {
		config.ConnectRedisWithRetry(sigCtx)
	}
	if settings.AuditMirrorDB {
		config.ConnectDatabaseWithRetry(sigCtx)
		if strings.EqualFold(strings.TrimSpace(os.Getenv("SKIP_MIGRATIONS")), "true") {
			logger.WithFields(logrus.Fields{"field": "migrations"}).Warn("SKIP_MIGRATIONS=true; skipping AutoMigrate on startup")
		} else if err := models.MigrateTable(); err != nil {
			config.LogError(logger, "server.go", "main", "MigrateTable", nil, err)
		}
	}
	ready.Store(true)

	logger.WithFields(logrus.Fields{
		"info":     "Connection Established",
		"sheet_id": settings.SheetId,
	}).Info("listening on :", port)
	log.Println("Server started successfully")

	select {
	case <-sigCtx.Done():
	case err := <-serverErrCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithFields(logrus.Fields{"field": "http"}).Error("server stopped unexpectedly: " + err.Error())
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithFields(logrus.Fields{"field": "http"}).Error("graceful shutdown failed: " + err.Error())
	}

	if rdb := config.GetRedisDB(); rdb != nil {
		_ = rdb.Close()
	}
	config.CloseDB()
	config.ClosePubSub()
}
