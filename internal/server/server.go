package server

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/rebelchris/recallect/internal/config"
	"github.com/rebelchris/recallect/internal/core"
	"github.com/rebelchris/recallect/internal/observability"
)

const (
	userHeader          = "X-User-ID"
	defaultUpcomingDays = 30
	maxUpcomingDays     = 365
)

type Server struct {
	Engine  *core.Engine
	Ranking config.RankingConfig
	Review  config.ReviewConfig
	Logger  *zap.Logger
	Metrics *observability.Collector
}

func NewServer(engine *core.Engine, cfg *config.Config, logger *zap.Logger, metrics *observability.Collector) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		Engine:  engine,
		Ranking: cfg.Ranking,
		Review:  cfg.Review,
		Logger:  logger,
		Metrics: metrics,
	}
}

func (s *Server) SetupRouter() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if s.Metrics != nil {
		r.GET("/metrics", gin.WrapH(s.Metrics.Handler()))
	}

	api := r.Group("/", requireUser())
	api.GET("/contacts/:id/health", s.Health)
	api.POST("/contacts/:id/conversations", s.LogConversation)
	api.GET("/stale", s.Stale)
	api.GET("/upcoming", s.Upcoming)
	api.GET("/focus", s.Focus)
	api.GET("/segments", s.Segments)
	api.GET("/review", s.WeeklyReview)

	return r
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		elapsed := time.Since(start)
		status := c.Writer.Status()

		s.Metrics.ObserveHTTP(c.Request.Method, route, status, elapsed)
		s.Logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", status),
			zap.Duration("latency", elapsed),
			zap.String("client_ip", c.ClientIP()))
	}
}

func requireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader(userHeader) == "" {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "missing " + userHeader + " header"})
			return
		}
		c.Next()
	}
}

func userID(c *gin.Context) string {
	return c.GetHeader(userHeader)
}

func (s *Server) fail(c *gin.Context, err error, msg string) {
	switch {
	case errors.Is(err, core.ErrContactNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, core.ErrEmptyContent):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		s.Logger.Error(msg, zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": msg})
	}
}

func (s *Server) Health(c *gin.Context) {
	h, err := s.Engine.Health(c.Request.Context(), userID(c), c.Param("id"))
	if err != nil {
		s.fail(c, err, "Failed to compute health")
		return
	}
	c.JSON(http.StatusOK, h)
}

func (s *Server) Stale(c *gin.Context) {
	contacts, err := s.Engine.StaleContacts(c.Request.Context(), userID(c))
	if err != nil {
		s.fail(c, err, "Failed to scan contacts")
		return
	}
	c.JSON(http.StatusOK, gin.H{"contacts": contacts})
}

func (s *Server) Upcoming(c *gin.Context) {
	days, ok := intQuery(c, "days", defaultUpcomingDays)
	if !ok || days < 0 || days > maxUpcomingDays {
		c.JSON(http.StatusBadRequest, gin.H{"error": "days must be between 0 and 365"})
		return
	}
	upcoming, err := s.Engine.UpcomingDates(c.Request.Context(), userID(c), days)
	if err != nil {
		s.fail(c, err, "Failed to resolve dates")
		return
	}
	c.JSON(http.StatusOK, gin.H{"dates": upcoming})
}

func (s *Server) Focus(c *gin.Context) {
	opts, ok := s.rankingOptions(c, "focus_limit")
	if !ok {
		return
	}
	items, err := s.Engine.TodayFocus(c.Request.Context(), userID(c), opts)
	if err != nil {
		s.fail(c, err, "Failed to build focus list")
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (s *Server) Segments(c *gin.Context) {
	opts, ok := s.rankingOptions(c, "segment_limit")
	if !ok {
		return
	}
	queues, err := s.Engine.SegmentQueues(c.Request.Context(), userID(c), opts)
	if err != nil {
		s.fail(c, err, "Failed to build segment queues")
		return
	}
	c.JSON(http.StatusOK, gin.H{"segments": queues})
}

func (s *Server) WeeklyReview(c *gin.Context) {
	days, ok := intQuery(c, "days", s.Review.WindowDays)
	if !ok || days < 1 || days > 90 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "days must be between 1 and 90"})
		return
	}
	r, err := s.Engine.WeeklyReview(c.Request.Context(), userID(c), days)
	if err != nil {
		s.fail(c, err, "Failed to build review")
		return
	}
	c.JSON(http.StatusOK, r)
}

type LogConversationRequest struct {
	Content   string     `json:"content" binding:"required"`
	Type      string     `json:"type"`
	Timestamp *time.Time `json:"timestamp"`
}

func (s *Server) LogConversation(c *gin.Context) {
	var req LogConversationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	in := core.LogInput{ContactID: c.Param("id"), Content: req.Content, Type: req.Type}
	if req.Timestamp != nil {
		in.Timestamp = *req.Timestamp
	}
	res, err := s.Engine.LogConversation(c.Request.Context(), userID(c), in)
	if err != nil {
		s.fail(c, err, "Failed to log conversation")
		return
	}
	c.JSON(http.StatusCreated, res)
}

// rankingOptions layers query overrides over the configured defaults. The limit
// query parameter maps onto limitField.
func (s *Server) rankingOptions(c *gin.Context, limitField string) (config.RankingConfig, bool) {
	opts := s.Ranking

	limitDefault := opts.FocusLimit
	if limitField == "segment_limit" {
		limitDefault = opts.SegmentLimit
	}
	limit, ok1 := intQuery(c, "limit", limitDefault)
	cooldown, ok2 := intQuery(c, "cooldown", opts.CooldownDays)
	includeLow, ok3 := boolQuery(c, "include_low", opts.IncludeLowPriority)
	if !ok1 || !ok2 || !ok3 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid query parameters"})
		return opts, false
	}

	if limitField == "segment_limit" {
		opts.SegmentLimit = limit
	} else {
		opts.FocusLimit = limit
	}
	opts.CooldownDays = cooldown
	opts.IncludeLowPriority = includeLow

	if err := opts.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return opts, false
	}
	return opts, true
}

func intQuery(c *gin.Context, key string, def int) (int, bool) {
	raw, present := c.GetQuery(key)
	if !present || raw == "" {
		return def, true
	}
	n, err := strconv.Atoi(raw)
	return n, err == nil
}

func boolQuery(c *gin.Context, key string, def bool) (bool, bool) {
	raw, present := c.GetQuery(key)
	if !present || raw == "" {
		return def, true
	}
	b, err := strconv.ParseBool(raw)
	return b, err == nil
}
