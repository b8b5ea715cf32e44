package identity

import (
	"errors"
	"net/http"

	"github.com/beka-birhanu/vinom-mines/identity"
	"github.com/beka-birhanu/vinom-mines/service"
	"github.com/beka-birhanu/vinom-mines/service/i"
	"github.com/gin-gonic/gin"
)

// IdentityServer handles HTTP requests related to authentication.
type IdentityServer struct {
	authService i.Authenticator
	userRepo    i.UserRepo
}

// NewIdentityServer creates a new IdentityServer.
func NewIdentityServer(a i.Authenticator, ur i.UserRepo) *IdentityServer {
	return &IdentityServer{
		authService: a,
		userRepo:    ur,
	}
}

// RegisterPublic registers public routes.
func (c *IdentityServer) RegisterPublic(route *gin.RouterGroup) {
	auth := route.Group("/auth")
	{
		auth.POST("/register", c.registerUser)
		auth.POST("/login", c.login)
	}
}

// RegisterProtected registers privileged routes.
func (c *IdentityServer) RegisterProtected(route *gin.RouterGroup) {
	route.GET("/me", c.me)
}

func (c *IdentityServer) registerUser(ctx *gin.Context) {
	var request AuthRequest

	if err := ctx.ShouldBind(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := c.authService.Register(request.Username, request.Password)
	switch {
	case err == nil:
	case errors.Is(err, i.ErrUsernameConflict):
		ctx.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	case errors.Is(err, identity.ErrUsernameTooShort),
		errors.Is(err, identity.ErrUsernameTooLong),
		errors.Is(err, identity.ErrUsernameFormat),
		errors.Is(err, identity.ErrWeakPassword):
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	default:
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "unexpected error"})
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{"message": "User registered successfully"})
}

func (c *IdentityServer) login(ctx *gin.Context) {
	var request AuthRequest

	if err := ctx.ShouldBind(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, token, err := c.authService.SignIn(request.Username, request.Password)
	if errors.Is(err, service.ErrInvalidCredentials) {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "unexpected error"})
		return
	}

	ctx.JSON(http.StatusOK, &AuthResponse{
		ID:       user.ID.String(),
		Username: user.Username,
		Wins:     user.Wins,
		Losses:   user.Losses,
		Token:    token,
	})
}

func (c *IdentityServer) me(ctx *gin.Context) {
	userID, ok := UserID(ctx)
	if !ok {
		ctx.Status(http.StatusUnauthorized)
		return
	}

	user, err := c.userRepo.ByID(userID)
	if errors.Is(err, i.ErrUserNotFound) {
		ctx.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "unexpected error"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"id":       user.ID,
		"username": user.Username,
		"wins":     user.Wins,
		"losses":   user.Losses,
		"played":   user.Played(),
	})
}
