// Package api serves the admin command table over HTTP.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/fadedpez/trackbattle/internal/commands"
	"github.com/fadedpez/trackbattle/internal/logging"
	"github.com/fadedpez/trackbattle/internal/types"
	"github.com/fadedpez/trackbattle/pkg/metrics"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Options configures the admin API
type Options struct {
	Addr  string
	Table *commands.Table
	Auth  *Authenticator
	// Health reports whether the service can serve; nil is always healthy
	Health  func(ctx context.Context) error
	Metrics *metrics.Metrics
	Logger  *logging.Logger
}

// Server is the admin HTTP server
type Server struct {
	opts   Options
	logger *logging.Logger
	http   *http.Server
}

// commandRequest is the body of POST /admin/commands/:name
type commandRequest struct {
	// UserID acts on behalf of a user; defaults to the token subject
	UserID   string         `json:"user_id"`
	Username string         `json:"username"`
	Args     map[string]any `json:"args"`
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// NewServer builds the router
func NewServer(opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = logging.Default
	}
	s := &Server{opts: opts, logger: opts.Logger.With("API")}
	s.http = &http.Server{
		Addr:              opts.Addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Router returns the gin engine serving every route
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/healthz", s.healthz)
	if s.opts.Metrics != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.opts.Metrics.Registry(), promhttp.HandlerOpts{})))
	}

	admin := r.Group("/admin", AdminAuth(s.opts.Auth))
	admin.GET("/commands", s.listCommands)
	admin.POST("/commands/:name", s.runCommand)
	return r
}

// Start serves until Shutdown
func (s *Server) Start() error {
	s.logger.Info("Listening on %s", s.opts.Addr)
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown waits for in-flight requests
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

func (s *Server) healthz(c *gin.Context) {
	if s.opts.Health != nil {
		if err := s.opts.Health(c.Request.Context()); err != nil {
			s.logger.Warn("Health check failed: %v", err)
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) listCommands(c *gin.Context) {
	type option struct {
		Name     string `json:"name"`
		Required bool   `json:"required"`
	}
	type command struct {
		Name        string   `json:"name"`
		Description string   `json:"description"`
		AdminOnly   bool     `json:"admin_only"`
		Options     []option `json:"options"`
	}

	out := make([]command, 0)
	for _, cmd := range s.opts.Table.Commands() {
		cc := command{Name: cmd.Name, Description: cmd.Description, AdminOnly: cmd.AdminOnly, Options: []option{}}
		for _, o := range cmd.Options {
			cc.Options = append(cc.Options, option{Name: o.Name, Required: o.Required})
		}
		out = append(out, cc)
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) runCommand(c *gin.Context) {
	var body commandRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&body); err != nil {
			s.writeError(c, types.NewBattleError(types.ErrInvalidArgument, "Request body must be JSON."))
			return
		}
	}

	userID := body.UserID
	if userID == "" {
		userID = c.GetString(subjectKey)
	}

	resp, err := s.opts.Table.Dispatch(c.Request.Context(), commands.Request{
		Name:     c.Param("name"),
		Source:   commands.SourceHTTP,
		UserID:   userID,
		Username: body.Username,
		IsAdmin:  true,
		Args:     commands.Args(body.Args),
	})
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) writeError(c *gin.Context, err error) {
	code := types.CodeOf(err)
	c.JSON(StatusFor(code), errorResponse{Error: types.UserMessage(err), Code: string(code)})
}

// StatusFor maps an error code to an HTTP status
func StatusFor(code types.ErrorCode) int {
	switch code {
	case types.ErrInvalidArgument:
		return http.StatusBadRequest
	case types.ErrInvalidCommand, types.ErrNotFound:
		return http.StatusNotFound
	case types.ErrPermissionDenied:
		return http.StatusForbidden
	case types.ErrInsufficientFunds:
		return http.StatusPaymentRequired
	case types.ErrRateLimited:
		return http.StatusTooManyRequests
	case types.ErrInvalidPhase, types.ErrAlreadyVoted, types.ErrDuplicateOpenBattle:
		return http.StatusConflict
	case types.ErrAdapterFailure:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
