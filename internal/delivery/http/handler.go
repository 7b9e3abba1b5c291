package http

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sparradar/backend/internal/domain"
	"github.com/sparradar/backend/internal/usecase"
)

// authCookieName is the session cookie carrying the signed token
const authCookieName = "auth_token"

// Handler holds dependencies for HTTP handlers
type Handler struct {
	lists      *usecase.ShoppingListService
	auth       *usecase.AuthService
	markets    domain.MarketRepository
	production bool
}

// NewHandler creates a new HTTP handler
func NewHandler(lists *usecase.ShoppingListService, auth *usecase.AuthService, markets domain.MarketRepository, production bool) *Handler {
	return &Handler{
		lists:      lists,
		auth:       auth,
		markets:    markets,
		production: production,
	}
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "sparradar-backend",
		"version": "1.0.0",
	})
}

// ParseShoppingList turns a free-text shopping list into a structured,
// priced result. The body is a non-empty array of non-empty strings.
// Resolution failures collapse to a single coarse 400; no partial
// results are returned.
func (h *Handler) ParseShoppingList(c *gin.Context) {
	var lines []string
	if err := c.ShouldBindJSON(&lines); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "body must be a JSON array of strings"})
		return
	}

	if len(lines) == 0 {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "items array cannot be empty"})
		return
	}
	for _, line := range lines {
		if line == "" {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "item cannot be empty"})
			return
		}
	}

	result, err := h.lists.Parse(c.Request.Context(), lines)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidRequest) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "invalid shopping list"})
			return
		}
		// Exhausted and Failed are internally distinct but surface
		// identically to the caller.
		log.Printf("[HTTP] Shopping list parse failed: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to parse shopping list"})
		return
	}

	c.JSON(http.StatusOK, result)
}

// ListMarkets returns one page of the market directory
func (h *Handler) ListMarkets(c *gin.Context) {
	var query struct {
		Page  int `form:"page,default=1" binding:"min=1"`
		Limit int `form:"limit,default=10" binding:"min=1,max=100"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "invalid pagination parameters"})
		return
	}

	markets, meta, err := h.markets.List(c.Request.Context(), query.Page, query.Limit)
	if err != nil {
		log.Printf("[HTTP] Listing markets failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch markets"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":       markets,
		"pagination": meta,
	})
}

type registerRequest struct {
	Gender    string `json:"gender"`
	FirstName string `json:"firstName" binding:"required"`
	LastName  string `json:"lastName" binding:"required"`
	Email     string `json:"email" binding:"required,email"`
	ZipCode   string `json:"zipCode"`
	City      string `json:"city"`
	Address   string `json:"address"`
	Password  string `json:"password" binding:"required,min=8"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Register creates a new user account
func (h *Handler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid registration request"})
		return
	}

	user, err := h.auth.Register(c.Request.Context(), usecase.RegisterRequest{
		Gender:    req.Gender,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		ZipCode:   req.ZipCode,
		City:      req.City,
		Address:   req.Address,
		Password:  req.Password,
	})
	if err != nil {
		if errors.Is(err, domain.ErrEmailTaken) {
			c.JSON(http.StatusConflict, gin.H{"message": "email is already registered"})
			return
		}
		log.Printf("[HTTP] Registration failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "error registering user"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "User registered successfully",
		"data":    user,
	})
}

// Login authenticates a user and sets the session cookie
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid email or password"})
		return
	}

	user, token, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid email or password"})
			return
		}
		log.Printf("[HTTP] Login failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "error logging in"})
		return
	}

	c.SetCookie(authCookieName, token, 30*60, "/", "", h.production, true)
	c.JSON(http.StatusOK, gin.H{
		"message": "Login successful",
		"data":    gin.H{"id": user.ID, "email": user.Email},
		"token":   token,
	})
}

// Logout clears the session cookie
func (h *Handler) Logout(c *gin.Context) {
	c.SetCookie(authCookieName, "", -1, "/", "", h.production, true)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}
