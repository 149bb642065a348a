package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *Handler) ListCategories(c *gin.Context) {
	userID := currentUserID(c)

	list, err := h.categoryService.ListForAuthor(userID)
	if err != nil {
		h.logger.Error("Failed to list categories", "user_id", userID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch categories"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "list": list})
}
