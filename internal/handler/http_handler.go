package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/riskids/riskids-betest/internal/domain"
	"github.com/riskids/riskids-betest/internal/repository"
	"github.com/riskids/riskids-betest/internal/service"
	"github.com/riskids/riskids-betest/pkg/log"
	"github.com/riskids/riskids-betest/pkg/middleware"
	"github.com/riskids/riskids-betest/pkg/response"
)

// Handler handles HTTP requests for the user account API.
type Handler struct {
	userService    service.UserService
	authService    service.AuthService
	authMiddleware *middleware.AuthMiddleware
}

// NewHandler creates a new HTTP handler.
func NewHandler(userService service.UserService, authService service.AuthService, authMiddleware *middleware.AuthMiddleware) *Handler {
	return &Handler{
		userService:    userService,
		authService:    authService,
		authMiddleware: authMiddleware,
	}
}

// RegisterRoutes registers all routes.
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	api := r.Group("/api")
	{
		api.POST("/login", h.Login)
		api.POST("/logout", h.authMiddleware.RequireAuth(), h.Logout)

		api.POST("/users", h.CreateUser)

		users := api.Group("/users")
		users.Use(h.authMiddleware.RequireAuth())
		{
			users.GET("/account/:accountNumber", h.GetUserByAccountNumber)
			users.GET("/registration/:registrationNumber", h.GetUserByRegistrationNumber)
			users.GET("/inactive", h.GetInactiveAccounts)
			users.PATCH("/:userId", h.UpdateUser)
			users.DELETE("/:userId", h.DeleteUser)
		}
	}
}

// Login authenticates a user and returns a bearer token.
func (h *Handler) Login(c *gin.Context) {
	ctx := c.Request.Context()
	l := log.Ctx(ctx)

	var req domain.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		l.Warn().Err(err).Msg("invalid login request")
		response.ValidationError(c, err.Error())
		return
	}

	result, err := h.authService.Login(ctx, &req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			response.InvalidCredentials(c)
			return
		}
		l.Error().Err(err).Msg("login failed")
		response.ServerError(c)
		return
	}

	response.Success(c, result)
}

// Logout records logout activity for the authenticated login.
func (h *Handler) Logout(c *gin.Context) {
	ctx := c.Request.Context()

	accountID := middleware.GetAccountID(c)
	if err := h.authService.Logout(ctx, accountID); err != nil {
		l := log.Ctx(ctx)
		l.Error().Err(err).Str(log.FieldAccountID, accountID).Msg("logout failed")
		response.ServerError(c)
		return
	}

	response.SuccessMessage(c, "Logged out successfully")
}

// CreateUser registers a new user.
func (h *Handler) CreateUser(c *gin.Context) {
	ctx := c.Request.Context()
	l := log.Ctx(ctx)

	var req domain.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		l.Warn().Err(err).Msg("invalid create user request")
		response.ValidationError(c, err.Error())
		return
	}

	user, err := h.userService.CreateUser(ctx, &req)
	if err != nil {
		if isDuplicate(err) {
			response.ValidationError(c, err.Error())
			return
		}
		l.Error().Err(err).Msg("create user failed")
		response.ServerError(c)
		return
	}

	response.Created(c, gin.H{"user": user})
}

// GetUserByAccountNumber looks a user up by account number.
func (h *Handler) GetUserByAccountNumber(c *gin.Context) {
	h.getUser(c, func() (*domain.User, error) {
		return h.userService.GetUserByAccountNumber(c.Request.Context(), c.Param("accountNumber"))
	})
}

// GetUserByRegistrationNumber looks a user up by registration number.
func (h *Handler) GetUserByRegistrationNumber(c *gin.Context) {
	h.getUser(c, func() (*domain.User, error) {
		return h.userService.GetUserByRegistrationNumber(c.Request.Context(), c.Param("registrationNumber"))
	})
}

func (h *Handler) getUser(c *gin.Context, fetch func() (*domain.User, error)) {
	user, err := fetch()
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			response.NotFound(c, "User not found")
			return
		}
		l := log.Ctx(c.Request.Context())
		l.Error().Err(err).Msg("get user failed")
		response.ServerError(c)
		return
	}

	response.Success(c, gin.H{"user": user})
}

// GetInactiveAccounts reports logins idle for more than three days.
func (h *Handler) GetInactiveAccounts(c *gin.Context) {
	ctx := c.Request.Context()

	accounts, err := h.userService.GetInactiveAccounts(ctx)
	if err != nil {
		l := log.Ctx(ctx)
		l.Error().Err(err).Msg("inactive accounts scan failed")
		response.ServerError(c)
		return
	}
	if accounts == nil {
		accounts = []domain.InactiveAccount{}
	}

	response.Success(c, gin.H{"accounts": accounts})
}

// UpdateUser applies a partial update to a user.
func (h *Handler) UpdateUser(c *gin.Context) {
	ctx := c.Request.Context()
	l := log.Ctx(ctx)

	var req domain.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		l.Warn().Err(err).Msg("invalid update user request")
		response.ValidationError(c, err.Error())
		return
	}

	user, err := h.userService.UpdateUser(ctx, c.Param("userId"), &req)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			response.NotFound(c, "User not found")
			return
		}
		if isDuplicate(err) {
			response.ValidationError(c, err.Error())
			return
		}
		l.Error().Err(err).Str(log.FieldUserID, c.Param("userId")).Msg("update user failed")
		response.ServerError(c)
		return
	}

	response.Success(c, gin.H{"user": user})
}

// DeleteUser removes a user and its login.
func (h *Handler) DeleteUser(c *gin.Context) {
	ctx := c.Request.Context()

	if err := h.userService.DeleteUser(ctx, c.Param("userId")); err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			response.NotFound(c, "User not found")
			return
		}
		l := log.Ctx(ctx)
		l.Error().Err(err).Str(log.FieldUserID, c.Param("userId")).Msg("delete user failed")
		response.ServerError(c)
		return
	}

	response.SuccessMessage(c, "User deleted successfully")
}

func isDuplicate(err error) bool {
	return errors.Is(err, repository.ErrDuplicateAccountNumber) ||
		errors.Is(err, repository.ErrDuplicateEmail) ||
		errors.Is(err, repository.ErrDuplicateRegistrationNumber) ||
		errors.Is(err, repository.ErrDuplicateAccountID)
}
