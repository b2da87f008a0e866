// Package httpapi exposes the editor and reviewer actions over HTTP with
// gin. Mutations answer with primary.Result; reads answer with the port
// types. Every route under /api/v1 needs a bearer token.
package httpapi

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/example/editorial/internal/adapters/auth"
	"github.com/example/editorial/internal/apperr"
	"github.com/example/editorial/internal/core/access"
	"github.com/example/editorial/internal/ctxutil"
	"github.com/example/editorial/internal/logging"
	"github.com/example/editorial/internal/metrics"
	"github.com/example/editorial/internal/ports/primary"
)

// Services are the primary ports the routes drive.
type Services struct {
	Submissions  primary.SubmissionService
	Rounds       primary.ReviewRoundService
	Assignments  primary.ReviewAssignmentService
	Participants primary.ParticipantService
	Queues       primary.QueueService
	Ledger       primary.LedgerService
	Forms        primary.ReviewFormService
}

// TokenVerifier turns a bearer token into a principal.
type TokenVerifier interface {
	Verify(token string) (*access.Principal, error)
}

// Options configures the router.
type Options struct {
	Logger  *slog.Logger
	Metrics *metrics.Collectors
}

type server struct {
	svc    Services
	logger *slog.Logger
}

// NewRouter builds the gin engine.
func NewRouter(svc Services, tokens TokenVerifier, opts Options) *gin.Engine {
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	s := &server{svc: svc, logger: logger}

	router := gin.New()
	router.Use(requestID(), requestLogger(logger), gin.CustomRecovery(s.recovered))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(opts.Metrics.Handler()))

	v1 := router.Group("/api/v1")
	v1.Use(authenticate(tokens))
	{
		editor := v1.Group("/editor")
		{
			editor.GET("/dashboard", s.dashboard)

			editor.GET("/submissions", s.listQueue)
			editor.POST("/submissions", s.createSubmission)
			editor.GET("/submissions/:id", s.getSubmission)
			editor.DELETE("/submissions/:id", s.deleteSubmission)
			editor.POST("/submissions/:id/workflow", s.changeWorkflow)

			editor.GET("/submissions/:id/rounds", s.listRounds)
			editor.GET("/submissions/:id/rounds/next", s.nextRoundNumber)
			editor.POST("/submissions/:id/rounds", s.createRound)
			editor.POST("/rounds/:id/close", s.closeRound)

			editor.POST("/submissions/:id/reviewers", s.assignReviewer)
			editor.PATCH("/assignments/:id", s.updateAssignment)
			editor.DELETE("/assignments/:id", s.removeAssignment)

			editor.GET("/submissions/:id/participants", s.listParticipants)
			editor.POST("/submissions/:id/participants", s.assignParticipant)
			editor.DELETE("/submissions/:id/participants", s.removeParticipant)
			editor.PUT("/submissions/:id/participants/permissions", s.updatePermissions)

			editor.GET("/submissions/:id/activity", s.listActivity)
			editor.POST("/submissions/:id/activity", s.logActivity)

			editor.GET("/tasks", s.listTasks)
			editor.POST("/tasks", s.createTask)
			editor.POST("/tasks/:id/claim", s.claimTask)
			editor.POST("/tasks/:id/close", s.closeTask)

			editor.GET("/forms", s.listForms)
			editor.POST("/forms", s.createForm)
		}

		reviewer := v1.Group("/reviewer")
		{
			reviewer.GET("/assignments", s.listOwnAssignments)
			reviewer.GET("/assignments/:id", s.getAssignment)
			reviewer.POST("/assignments/:id/accept", s.acceptAssignment)
			reviewer.POST("/assignments/:id/decline", s.declineAssignment)
			reviewer.PUT("/assignments/:id/draft", s.saveDraft)
			reviewer.POST("/assignments/:id/submit", s.submitRecommendation)
		}

		v1.GET("/forms/:id", s.getForm)
	}
	return router
}

// requestID tags the request context with a correlation ID, reusing an
// incoming X-Request-ID.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		c.Header("X-Request-ID", id)
		c.Request = c.Request.WithContext(ctxutil.WithRequestID(c.Request.Context(), id))
		c.Next()
	}
}

func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		status := c.Writer.Status()
		level := slog.LevelInfo
		if status >= http.StatusInternalServerError {
			level = slog.LevelError
		}
		logging.WithContext(c.Request.Context(), logger).Log(c.Request.Context(), level, "http request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", status,
			"latency", time.Since(start))
	}
}

func authenticate(tokens TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := auth.BearerToken(c.GetHeader("Authorization"))
		if !ok {
			abort(c, apperr.New(apperr.ErrUnauthorized, "bearer token required"))
			return
		}
		p, err := tokens.Verify(token)
		if err != nil {
			abort(c, err)
			return
		}
		ctx := auth.WithPrincipal(c.Request.Context(), p)
		c.Request = c.Request.WithContext(ctxutil.WithActorID(ctx, p.UserID))
		c.Next()
	}
}

func (s *server) recovered(c *gin.Context, v any) {
	logging.WithContext(c.Request.Context(), s.logger).Error("handler panic", "panic", v, "path", c.FullPath())
	abort(c, apperr.Newf(apperr.ErrInfrastructure, "panic: %v", v))
}
