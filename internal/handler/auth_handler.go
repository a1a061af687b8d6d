package handler

import (
	"net/http"

	"inventory-service/internal/model"
	"inventory-service/pkg/logger"
	"inventory-service/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// Register creates a new user account. Kept open for seeding convenience;
// the role defaults to client.
func (h *Handler) Register(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RegisterCounter.Inc()

	var req struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
		Role     string `json:"role"`
	}
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse registration request", zap.Error(err))
		prometheus.RecordAuthError("invalid_request")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}

	if req.Email == "" || req.Password == "" {
		log.Warn("Incomplete registration data", zap.String("email", req.Email))
		prometheus.RecordAuthError("incomplete_registration")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Email and password are required"})
	}

	role := req.Role
	if role == "" {
		role = model.RoleClient
	}
	if role != model.RoleAdmin && role != model.RoleClient {
		log.Warn("Unknown role in registration", zap.String("role", req.Role))
		prometheus.RecordAuthError("invalid_role")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Unknown role"})
	}

	var count int64
	h.db.Model(&model.User{}).Where("email = ?", req.Email).Count(&count)
	if count > 0 {
		log.Warn("Email already registered", zap.String("email", req.Email))
		prometheus.RecordAuthError("email_exists")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Email already exists"})
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		log.Error("Failed to hash password", zap.Error(err))
		return serverError(c)
	}

	user := model.User{
		Name:     req.Name,
		Email:    req.Email,
		Password: string(hash),
		Role:     role,
	}
	if err := h.db.Create(&user).Error; err != nil {
		log.Error("Failed to create user", zap.String("email", req.Email), zap.Error(err))
		return serverError(c)
	}

	log.Info("User registered",
		zap.Uint("user_id", user.ID),
		zap.String("email", user.Email),
		zap.String("role", user.Role))
	return c.JSON(http.StatusOK, echo.Map{"user_id": user.ID})
}

// Login verifies credentials and issues a bearer token carrying the user's
// identity and role
func (h *Handler) Login(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.LoginCounter.Inc()

	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse login request", zap.Error(err))
		prometheus.RecordAuthError("invalid_request")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}

	var user model.User
	if err := h.db.Where("email = ?", req.Email).First(&user).Error; err != nil {
		log.Warn("User not found", zap.String("email", req.Email))
		prometheus.RecordAuthError("user_not_found")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Invalid credentials"})
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		log.Warn("Invalid password", zap.String("email", req.Email))
		prometheus.RecordAuthError("invalid_password")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Invalid credentials"})
	}

	token, err := h.jwt.GenerateToken(user.Email, user.ID, user.Name, user.Role)
	if err != nil {
		log.Error("Failed to generate token", zap.Error(err))
		prometheus.RecordAuthError("token_generation_failed")
		return serverError(c)
	}

	log.Info("User logged in",
		zap.Uint("user_id", user.ID),
		zap.String("email", user.Email),
		zap.String("role", user.Role))
	return c.JSON(http.StatusOK, echo.Map{"token": token})
}
