package api

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"forexpro-backend-go/internal/core"
)

// UserHandler handles user-profile related API endpoints.
type UserHandler struct {
	userService core.UserService
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(us core.UserService) *UserHandler {
	return &UserHandler{userService: us}
}

// GetCurrentUserProfile handles the GET /api/v1/users/me endpoint.
// It retrieves the profile of the currently authenticated user.
func (h *UserHandler) GetCurrentUserProfile(c *gin.Context) {
	rawUserID, exists := c.Get("userID")
	if !exists {
		log.Println("GetCurrentUserProfile Error: userID not found in context. Auth middleware might not have run or failed.")
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Authentication error: User ID not found in context"})
		return
	}
	firebaseUserID, ok := rawUserID.(string)
	if !ok || firebaseUserID == "" {
		log.Printf("GetCurrentUserProfile Error: userID in context is not a valid string or is empty. Value: %v", rawUserID)
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid user ID format in context"})
		return
	}

	user, err := h.userService.GetByID(c.Request.Context(), firebaseUserID)
	if err != nil {
		if errors.Is(err, core.ErrUserNotFound) {
			log.Printf("GetCurrentUserProfile: User profile not found for userID %s.", firebaseUserID)
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "User profile not found"})
			return
		}

		log.Printf("GetCurrentUserProfile Error: userService.GetByID failed for userID %s: %v", firebaseUserID, err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to retrieve user profile", Details: err.Error()})
		return
	}

	c.JSON(http.StatusOK, user)
}
