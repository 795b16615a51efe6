package api

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"forexpro-backend-go/internal/core"
)

// AuthHandler handles authentication related API endpoints.
type AuthHandler struct {
	userService core.UserService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(us core.UserService) *AuthHandler {
	return &AuthHandler{userService: us}
}

// InitializeUserProfile handles the POST /api/v1/users/initialize endpoint.
// Called by a client after a Firebase authentication event (login/signup) to
// ensure a corresponding user profile exists in the application's database.
// Relies on the auth middleware having validated the Firebase ID token and
// populated user claims in the Gin context.
func (h *AuthHandler) InitializeUserProfile(c *gin.Context) {
	rawUserID, exists := c.Get("userID")
	if !exists {
		log.Println("InitializeUserProfile Error: userID not found in context. Auth middleware might not have run or failed.")
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Authentication error: User ID not found in context"})
		return
	}
	firebaseUserID, ok := rawUserID.(string)
	if !ok || firebaseUserID == "" {
		log.Printf("InitializeUserProfile Error: userID in context is not a valid string or is empty. Value: %v", rawUserID)
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid user ID format in context"})
		return
	}

	rawUserEmail, exists := c.Get("userEmail")
	if !exists {
		log.Printf("InitializeUserProfile Warning: userEmail not found in context for userID: %s.", firebaseUserID)
	}
	email, _ := rawUserEmail.(string)

	// DisplayName and PhotoURL can be optional
	rawDisplayName, _ := c.Get("userDisplayName")
	displayName, _ := rawDisplayName.(string)

	rawPhotoURL, _ := c.Get("userPhotoURL")
	photoURL, _ := rawPhotoURL.(string)

	user, created, err := h.userService.GetOrCreate(c.Request.Context(), firebaseUserID, email, displayName, photoURL)
	if err != nil {
		log.Printf("InitializeUserProfile Error: userService.GetOrCreate failed for userID %s: %v", firebaseUserID, err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to initialize user profile", Details: err.Error()})
		return
	}

	if created {
		log.Printf("User profile created for userID: %s", firebaseUserID)
		c.JSON(http.StatusCreated, user)
	} else {
		c.JSON(http.StatusOK, user)
	}
}
