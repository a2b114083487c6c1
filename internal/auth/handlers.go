package auth

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/librarium/internal/entities"
)

// Controller serves the register/login/logout endpoints.
type Controller struct {
	service        *Service
	sessionManager *SessionManager
}

// NewController creates the auth controller.
func NewController(service *Service, sessionManager *SessionManager) *Controller {
	return &Controller{service: service, sessionManager: sessionManager}
}

// RegisterRoutes attaches the auth endpoints to the router.
func (ctrl *Controller) RegisterRoutes(router gin.IRouter) {
	router.POST("/api/auth/register", ctrl.Register)
	router.POST("/api/auth/login", ctrl.Login)
	router.POST("/api/auth/logout", ctrl.Logout)
}

type registerRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Register creates a user account and returns the one-time API token.
func (ctrl *Controller) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username, email and password are required"})
		return
	}

	user, token, err := ctrl.service.CreateUser(req.Username, req.Email, req.Password, entities.UserRoleMember)
	if err != nil {
		if errors.Is(err, ErrUserExists) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"user":      user,
		"api_token": token, // shown once, stored hashed
	})
}

// Login verifies credentials and establishes a session.
func (ctrl *Controller) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username and password are required"})
		return
	}

	user, err := ctrl.service.Authenticate(req.Username, req.Password)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	if ctrl.sessionManager != nil {
		if err := ctrl.sessionManager.CreateSession(c.Request, user); err != nil {
			log.Printf("Failed to create session for user %d: %v", user.ID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{"user": user})
}

// Logout destroys the current session.
func (ctrl *Controller) Logout(c *gin.Context) {
	if ctrl.sessionManager != nil {
		if err := ctrl.sessionManager.DestroySession(c.Request); err != nil {
			log.Printf("Failed to destroy session: %v", err)
		}
	}
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}
