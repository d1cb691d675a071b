package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"elevator-maintenance-backend/internal/model"
	"elevator-maintenance-backend/internal/mw"
)

// GetUsers handles GET /api/users (admin only).
func (h *Handler) GetUsers(c *gin.Context) {
	var users []model.User
	if err := h.store.DB().WithContext(c.Request.Context()).Order("name asc").Find(&users).Error; err != nil {
		abortStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

// GetUser handles GET /api/users/:id (admin only).
func (h *Handler) GetUser(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	user, err := h.store.UserByID(c.Request.Context(), id)
	if err != nil {
		abortStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// DeleteUser handles DELETE /api/users/:id (admin only). Admins may not
// delete their own account.
func (h *Handler) DeleteUser(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	caller, _ := mw.CallerFrom(c)
	if caller.UserID == id {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "you cannot delete your own account"})
		return
	}

	if err := h.store.DeleteUser(c.Request.Context(), id); err != nil {
		abortStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"msg": "Deleted"})
}
