package handlers

import (
	"errors"
	"net/http"
	"unicode/utf8"

	"github.com/yixi1127/blog-system/internal/models"
	"github.com/yixi1127/blog-system/pkg/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func publicUser(user *models.User) gin.H {
	return gin.H{
		"id":         user.ID,
		"username":   user.Username,
		"email":      user.Email,
		"avatar":     user.Avatar,
		"createTime": user.CreatedAt,
	}
}

func (h *Handler) RegisterUser(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username, email and password are required"})
		return
	}

	// All length constraints are checked before touching the database.
	if req.Username == "" || req.Email == "" || req.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username, email and password are required"})
		return
	}
	// Lengths are bounded in characters, not bytes, so multibyte names count
	// the way users expect.
	if n := utf8.RuneCountInString(req.Username); n < 4 || n > 16 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username must be between 4 and 16 characters"})
		return
	}
	if utf8.RuneCountInString(req.Password) < 6 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "password must be at least 6 characters"})
		return
	}

	// Two independent existence checks, distinct messages.
	var existing models.User
	if err := h.db.Where("username = ?", req.Username).First(&existing).Error; err == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username already exists"})
		return
	}
	if err := h.db.Where("email = ?", req.Email).First(&existing).Error; err == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email already registered"})
		return
	}

	hashedPassword, err := utils.HashPassword(req.Password)
	if err != nil {
		h.logger.Error("Failed to hash password", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "registration failed, please try again later"})
		return
	}

	newUser := models.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hashedPassword,
		Avatar:       "",
	}

	if err := h.db.Create(&newUser).Error; err != nil {
		h.logger.Error("Failed to create user", "username", req.Username, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "registration failed, please try again later"})
		return
	}

	h.auditService.LogAction(&newUser.ID, "REGISTER", newUser.Username, nil, c.ClientIP())

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"user":    publicUser(&newUser),
	})
}

func (h *Handler) LoginUser(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Username == "" || req.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username and password are required"})
		return
	}

	var user models.User
	result := h.db.Where("username = ?", req.Username).First(&user)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			// Same message as a password mismatch, no user enumeration.
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid username or password"})
		} else {
			h.logger.Error("Failed to look up user", "username", req.Username, "error", result.Error)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "login failed, please try again later"})
		}
		return
	}

	if !utils.CheckPasswordHash(req.Password, user.PasswordHash) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid username or password"})
		return
	}

	token, err := h.tokenService.Issue(user.ID, user.Username)
	if err != nil {
		h.logger.Error("Failed to issue token", "user_id", user.ID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "login failed, please try again later"})
		return
	}

	h.auditService.LogAction(&user.ID, "LOGIN", user.Username, nil, c.ClientIP())

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"token":   token,
		"user":    publicUser(&user),
	})
}
