package server

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/MarcoPoloResearchLab/roster/internal/auth"
	"github.com/MarcoPoloResearchLab/roster/internal/metrics"
	"github.com/MarcoPoloResearchLab/roster/internal/notify"
	"github.com/MarcoPoloResearchLab/roster/internal/users"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

const (
	identityContextKey   = "roster_identity"
	accessTokenQueryKey  = "access_token"
	defaultHeartbeatTick = 15 * time.Second
)

var (
	errMissingStore         = errors.New("record store dependency required")
	errMissingChecker       = errors.New("credential checker dependency required")
	errMissingTokenManager  = errors.New("token manager dependency required")
	errMissingFeed          = errors.New("notification feed dependency required")
	errInvalidAuthorization = errors.New("authorization header missing or invalid")
)

// TokenManager issues and validates API bearer tokens.
type TokenManager interface {
	IssueToken(ctx context.Context, identity auth.Identity) (string, int64, error)
	ValidateToken(token string) (auth.Identity, error)
}

// Dependencies wires the HTTP handler.
type Dependencies struct {
	Store             users.Store
	Checker           auth.CredentialChecker
	TokenManager      TokenManager
	Feed              *notify.Feed
	Metrics           *metrics.Collectors
	Logger            *zap.Logger
	AllowedOrigins    []string
	HeartbeatInterval time.Duration
}

// NewHTTPHandler builds the roster API router.
func NewHTTPHandler(deps Dependencies) (http.Handler, error) {
	if deps.Store == nil {
		return nil, errMissingStore
	}
	if deps.Checker == nil {
		return nil, errMissingChecker
	}
	if deps.TokenManager == nil {
		return nil, errMissingTokenManager
	}
	if deps.Feed == nil {
		return nil, errMissingFeed
	}

	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	heartbeat := deps.HeartbeatInterval
	if heartbeat <= 0 {
		heartbeat = defaultHeartbeatTick
	}

	router := gin.New()
	router.Use(gin.Recovery())
	if deps.Metrics != nil {
		router.Use(deps.Metrics.Middleware())
	}
	router.Use(corsMiddleware(deps.AllowedOrigins))

	handler := &httpHandler{
		store:     deps.Store,
		checker:   deps.Checker,
		tokens:    deps.TokenManager,
		feed:      deps.Feed,
		metrics:   deps.Metrics,
		logger:    logger,
		heartbeat: heartbeat,
	}

	router.GET("/healthz", handler.handleHealth)
	if deps.Metrics != nil {
		router.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))
	}
	router.POST("/auth/login", handler.handleLogin)
	router.POST("/auth/logout", handler.handleLogout)

	protected := router.Group("/")
	protected.Use(handler.authorizeRequest)
	protected.GET("/users", handler.handleListUsers)
	protected.GET("/users/view", handler.handleUsersView)
	protected.GET("/users/:id", handler.handleGetUser)
	protected.POST("/users", handler.handleCreateUser)
	protected.PUT("/users/:id", handler.handleUpdateUser)
	protected.GET("/notifications", handler.handleActiveNotifications)
	protected.GET("/notifications/stream", handler.handleNotificationStream)

	return router, nil
}

type httpHandler struct {
	store     users.Store
	checker   auth.CredentialChecker
	tokens    TokenManager
	feed      *notify.Feed
	metrics   *metrics.Collectors
	logger    *zap.Logger
	heartbeat time.Duration
}

type loginRequestPayload struct {
	Identifier string `json:"identifier"`
	Secret     string `json:"secret"`
}

func (h *httpHandler) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *httpHandler) handleLogin(c *gin.Context) {
	var request loginRequestPayload
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}

	identity, err := h.checker.Check(c.Request.Context(), request.Identifier, request.Secret)
	if err != nil {
		if errors.Is(err, auth.ErrAuthFailed) {
			h.logger.Info("login rejected", zap.Error(err))
		} else {
			h.logger.Warn("credential check failed", zap.Error(err))
		}
		c.JSON(http.StatusUnauthorized, gin.H{"error": "auth_failed"})
		return
	}

	token, expiresIn, err := h.tokens.IssueToken(c.Request.Context(), identity)
	if err != nil {
		h.logger.Error("failed to issue api token", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "token_issue_failed"})
		return
	}

	c.JSON(http.StatusOK, auth.LoginResponse{
		AccessToken: token,
		ExpiresIn:   expiresIn,
		TokenType:   "Bearer",
		Subject:     identity.Subject,
		Email:       identity.Email,
	})
}

// Tokens are stateless; the client forgets its token on logout.
func (h *httpHandler) handleLogout(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

func (h *httpHandler) authorizeRequest(c *gin.Context) {
	token, ok := bearerToken(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": errInvalidAuthorization.Error()})
		return
	}
	identity, err := h.tokens.ValidateToken(token)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			h.logger.Info("token validation failed", zap.Error(err))
		} else {
			h.logger.Warn("token validation failed", zap.Error(err))
		}
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	c.Set(identityContextKey, identity)
	c.Next()
}

// bearerToken reads the Authorization header. EventSource clients cannot set
// headers, so the stream route also accepts the token as a query parameter.
func bearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
		return token, token != ""
	}
	if header == "" && strings.HasSuffix(c.FullPath(), "/stream") {
		token := strings.TrimSpace(c.Query(accessTokenQueryKey))
		return token, token != ""
	}
	return "", false
}

func requestIdentity(c *gin.Context) auth.Identity {
	value, ok := c.Get(identityContextKey)
	if !ok {
		return auth.Identity{}
	}
	identity, _ := value.(auth.Identity)
	return identity
}
