package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/dmorgan81/imagenproxy/internal/config"
	perrors "github.com/dmorgan81/imagenproxy/internal/errors"
	"github.com/dmorgan81/imagenproxy/internal/handler"
	"github.com/dmorgan81/imagenproxy/internal/log"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/samber/do"
)

// NewRouter builds the gin engine serving the generation and liveness routes.
func NewRouter(i *do.Injector) (*gin.Engine, error) {
	cfg := do.MustInvoke[config.Config](i)
	logger := do.MustInvoke[*slog.Logger](i)
	h := do.MustInvoke[*handler.Handler](i)

	if log.ParseLevel(cfg.LogLevel) == slog.LevelDebug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	return Build(logger, h), nil
}

func Build(logger *slog.Logger, h *handler.Handler) *gin.Engine {
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(loggingMiddleware(logger))
	engine.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:    []string{"Origin", "Content-Type", "Accept"},
		MaxAge:          12 * time.Hour,
	}))

	engine.POST("/api/imagen4", generate(h))
	engine.GET("/healthz", healthz)
	engine.HEAD("/healthz", healthz)

	return engine
}

func generate(h *handler.Handler) gin.HandlerFunc {
	return func(c *gin.Context) {
		// An unreadable or malformed body is treated as an empty request.
		var input handler.Input
		if err := json.NewDecoder(c.Request.Body).Decode(&input); err != nil {
			input = handler.Input{}
		}

		out, err := h.Handle(c.Request.Context(), input)
		if err != nil {
			_ = c.Error(err)
			c.JSON(perrors.StatusOf(err), gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, out)
	}
}

func healthz(c *gin.Context) {
	c.String(http.StatusOK, "ok")
}

func loggingMiddleware(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request = c.Request.WithContext(log.NewContext(c.Request.Context(), logger))

		start := time.Now()
		c.Next()

		attrs := []any{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		}
		if len(c.Errors) > 0 {
			attrs = append(attrs, "error", c.Errors.Last().Err)
		}
		logger.Info("http request", attrs...)
	}
}
