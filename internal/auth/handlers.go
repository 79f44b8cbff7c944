package auth

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type SignupRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type TokenResponse struct {
	Token string `json:"token"`
}

// Handler serves signup, login and the current-user endpoint.
type Handler struct {
	pool      *pgxpool.Pool
	jwtSecret []byte
	logger    *zap.Logger
}

func NewHandler(pool *pgxpool.Pool, jwtSecret string, logger *zap.Logger) *Handler {
	return &Handler{pool: pool, jwtSecret: []byte(jwtSecret), logger: logger}
}

func (h *Handler) Signup(c echo.Context) error {
	req := new(SignupRequest)
	if err := c.Bind(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Username == "" || req.Email == "" || len(req.Password) < 6 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "username, email and a password of at least 6 characters are required"})
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "server error"})
	}

	userID := uuid.NewString()
	_, err = h.pool.Exec(c.Request().Context(), `
		INSERT INTO profiles (id, username, email, password_hash)
		VALUES ($1, $2, $3, $4)
	`, userID, req.Username, req.Email, string(hashed))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return c.JSON(http.StatusConflict, echo.Map{"error": "username or email already taken"})
		}
		h.logger.Error("signup insert failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "server error"})
	}

	return h.issueToken(c, http.StatusCreated, userID)
}

func (h *Handler) Login(c echo.Context) error {
	req := new(LoginRequest)
	if err := c.Bind(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	var userID, passwordHash string
	err := h.pool.QueryRow(c.Request().Context(),
		`SELECT id, password_hash FROM profiles WHERE email = $1`,
		strings.ToLower(strings.TrimSpace(req.Email)),
	).Scan(&userID, &passwordHash)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}
	if err := bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte(req.Password)); err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}

	return h.issueToken(c, http.StatusOK, userID)
}

// Me returns the authenticated user's own profile, earnings included.
func (h *Handler) Me(c echo.Context) error {
	userID, ok := c.Get("user_id").(string)
	if !ok || userID == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	var username, email, bio string
	var avatarURL *string
	var totalEarned int64
	err := h.pool.QueryRow(c.Request().Context(), `
		SELECT username, email, bio, avatar_url, total_earned_cents
		FROM profiles WHERE id = $1
	`, userID).Scan(&username, &email, &bio, &avatarURL, &totalEarned)
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"id":                 userID,
		"username":           username,
		"email":              email,
		"bio":                bio,
		"avatar_url":         avatarURL,
		"total_earned_cents": totalEarned,
	})
}

func (h *Handler) issueToken(c echo.Context, status int, userID string) error {
	claims := jwt.MapClaims{
		"user_id": userID,
		"exp":     time.Now().Add(72 * time.Hour).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(h.jwtSecret)
	if err != nil {
		h.logger.Error("token signing failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "token generation failed"})
	}
	return c.JSON(status, TokenResponse{Token: signed})
}
