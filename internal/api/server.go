// ABOUTME: gin HTTP API over the chat service
// ABOUTME: Sessions are created, advanced and read under /v1; metrics and health sit at the root
package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/harper/dongne/internal/chat"
	"github.com/harper/dongne/internal/logger"
	"github.com/harper/dongne/internal/models"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// SessionResponse is the snapshot returned after every turn
type SessionResponse struct {
	SessionID  string                   `json:"session_id"`
	UserID     string                   `json:"user_id"`
	Stage      models.Stage             `json:"stage"`
	Context    models.SessionContext    `json:"context"`
	Transcript []models.TranscriptEntry `json:"transcript"`
	Choices    []models.ChoiceSummary   `json:"choices,omitempty"`
	UpdatedAt  time.Time                `json:"updated_at"`
}

func newSessionResponse(sess *models.Session) SessionResponse {
	return SessionResponse{
		SessionID:  sess.ID,
		UserID:     sess.UserID,
		Stage:      sess.Stage,
		Context:    sess.Context,
		Transcript: sess.Transcript,
		Choices:    sess.Choices,
		UpdatedAt:  sess.UpdatedAt,
	}
}

type startRequest struct {
	UserID string `json:"user_id" binding:"required"`
}

type cuisineRequest struct {
	Cuisine string `json:"cuisine" binding:"required"`
}

type messageRequest struct {
	Text string `json:"text"`
}

// Handler holds the chat service behind the routes
type Handler struct {
	chat   *chat.Service
	logger *zap.Logger
}

// NewRouter builds the gin engine with CORS, error mapping and request logging
func NewRouter(svc *chat.Service, corsOrigins []string, log *zap.Logger) *gin.Engine {
	log = logger.OrNop(log)
	h := &Handler{chat: svc, logger: log}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestLogger(log))
	r.Use(ErrorMiddleware(log))

	corsCfg := cors.DefaultConfig()
	corsCfg.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsCfg.AllowHeaders = []string{"Content-Type"}
	corsCfg.MaxAge = 12 * time.Hour
	if len(corsOrigins) == 0 || (len(corsOrigins) == 1 && corsOrigins[0] == "*") {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = corsOrigins
	}
	r.Use(cors.New(corsCfg))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := r.Group("/v1")
	{
		v1.GET("/cuisines", h.cuisines)

		sessions := v1.Group("/sessions")
		sessions.POST("", h.start)
		sessions.GET("/:id", h.get)
		sessions.POST("/:id/cuisine", h.chooseCuisine)
		sessions.POST("/:id/messages", h.sendMessage)
		sessions.POST("/:id/places/:index", h.choosePlace)
	}
	return r
}

func (h *Handler) cuisines(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"cuisines": h.chat.Cuisines()})
}

func (h *Handler) start(c *gin.Context) {
	var req startRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, badRequest("user_id is required"), nil)
		return
	}
	sess, err := h.chat.Start(c.Request.Context(), req.UserID)
	if err != nil {
		fail(c, err, nil)
		return
	}
	c.JSON(http.StatusCreated, newSessionResponse(sess))
}

func (h *Handler) get(c *gin.Context) {
	sess, err := h.chat.Get(c.Request.Context(), c.Param("id"))
	h.reply(c, sess, err)
}

func (h *Handler) chooseCuisine(c *gin.Context) {
	var req cuisineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, badRequest("cuisine is required"), nil)
		return
	}
	sess, err := h.chat.ChooseCuisine(c.Request.Context(), c.Param("id"), req.Cuisine)
	h.reply(c, sess, err)
}

func (h *Handler) sendMessage(c *gin.Context) {
	var req messageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, badRequest("invalid message body"), nil)
		return
	}
	sess, err := h.chat.SendMessage(c.Request.Context(), c.Param("id"), req.Text)
	h.reply(c, sess, err)
}

func (h *Handler) choosePlace(c *gin.Context) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		fail(c, badRequest("place index must be a number"), nil)
		return
	}
	sess, err := h.chat.ChoosePlace(c.Request.Context(), c.Param("id"), index)
	h.reply(c, sess, err)
}

func (h *Handler) reply(c *gin.Context, sess *models.Session, err error) {
	if err != nil {
		fail(c, err, sess)
		return
	}
	c.JSON(http.StatusOK, newSessionResponse(sess))
}

func requestLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Debug("http request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)))
	}
}

// Server runs the router until its context is cancelled
type Server struct {
	http   *http.Server
	logger *zap.Logger
}

// NewServer wraps the router in an http.Server bound to addr
func NewServer(addr string, router http.Handler, log *zap.Logger) *Server {
	return &Server{
		http: &http.Server{
			Addr:              addr,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
		logger: logger.OrNop(log),
	}
}

// Run serves until ctx is done, then shuts down gracefully
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", zap.String("addr", s.http.Addr))
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	s.logger.Info("shutting down http server")
	return s.http.Shutdown(shutdownCtx)
}
