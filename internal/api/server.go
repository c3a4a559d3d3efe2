// Package api exposes the diary, foods, profile and my-meals over a JSON
// REST API.
package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/cors"

	"github.com/echoshade800/spoon-calorie-v2-sub000/internal/service"
	"github.com/echoshade800/spoon-calorie-v2-sub000/internal/session"
)

const requestIDHeader = "X-Request-ID"

type Server struct {
	Store   *service.Store
	State   *session.State
	Barcode []service.BarcodeProvider
	Logger  *slog.Logger
}

// Handler returns the router wrapped in CORS handling.
func (s *Server) Handler() http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
		AllowedHeaders: []string{"*"},
		ExposedHeaders: []string{requestIDHeader},
	})
	return c.Handler(s.Router())
}

func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), s.requestID(), s.requestLogger())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api")
	api.GET("/foods/search", s.searchFoods)
	api.POST("/foods", s.createFood)
	api.GET("/foods/barcode/:code", s.lookupBarcode)

	api.GET("/diary/:date", s.getDiary)
	api.GET("/report", s.getReport)
	api.POST("/entries", s.createEntry)
	api.PATCH("/entries/:id", s.updateEntry)
	api.DELETE("/entries/:id", s.deleteEntry)
	api.POST("/exercises", s.createExercise)
	api.DELETE("/exercises/:id", s.deleteExercise)
	api.PUT("/steps/:date", s.setSteps)

	api.GET("/profile", s.getProfile)
	api.PUT("/profile", s.updateProfile)
	api.POST("/users/sync", s.syncProfile)
	api.POST("/profile/macros/balance", s.balanceMacros)

	api.GET("/my-meals", s.listMyMeals)
	api.POST("/my-meals", s.createMyMeal)
	api.DELETE("/my-meals/:id", s.deleteMyMeal)
	api.POST("/my-meals/:id/log", s.logMyMeal)
	return router
}

func (s *Server) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}

func (s *Server) requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger().Info("request",
			"request_id", c.GetString("request_id"),
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}

// apiError writes {"error": message}.
func apiError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": message})
}

// fail maps service errors to a status: validation failures carry the
// offending field.
func (s *Server) fail(c *gin.Context, err error) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": verr.Message, "field": verr.Field})
	case errors.Is(err, service.ErrNotFound):
		apiError(c, http.StatusNotFound, err.Error())
	default:
		s.logger().Error("request failed", "request_id", c.GetString("request_id"), "path", c.FullPath(), "error", err)
		apiError(c, http.StatusInternalServerError, "internal error")
	}
}

func (s *Server) now() time.Time {
	if s.Store != nil && s.Store.Now != nil {
		return s.Store.Now()
	}
	return time.Now()
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		apiError(c, http.StatusBadRequest, "invalid id")
		return 0, false
	}
	return id, true
}

func bindJSON(c *gin.Context, v any) bool {
	if err := c.ShouldBindJSON(v); err != nil {
		apiError(c, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return false
	}
	return true
}
