package web

import (
	goerrors "errors"
	"net/http"

	"chathub/auth"
	"chathub/domain"
	"chathub/errors"

	"github.com/gin-gonic/gin"
)

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type userView struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

func toUserView(u domain.User) userView {
	return userView{ID: u.ID, Username: u.Username, Email: u.Email}
}

func (h *Handlers) Register(c *gin.Context) {
	var req auth.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request body"})
		return
	}

	user, err := h.authService.Register(req)
	if err != nil {
		switch {
		case goerrors.Is(err, errors.ErrUserAlreadyExists):
			c.JSON(http.StatusConflict, gin.H{"message": "email already registered"})
		case goerrors.Is(err, errors.ErrInvalidPassword):
			c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		default:
			c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{"user": toUserView(user)})
}

func (h *Handlers) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request body"})
		return
	}

	token, user, err := h.authService.Login(req.Email, req.Password)
	if err != nil {
		if goerrors.Is(err, errors.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "invalid credentials"})
			return
		}
		h.log.Error("Login failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "internal error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token, "user": toUserView(user)})
}

// Me echoes the identity bound to the token, letting clients restore a
// session without keeping user data locally.
func (h *Handlers) Me(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"id":       c.GetString(auth.UserIDKey),
		"username": c.GetString(auth.UsernameKey),
	})
}
