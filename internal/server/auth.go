package server

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"taskman/internal/storage"
)

const ctxKeyUserID = "user_id"

// tokenClaims is the bearer token payload.
type tokenClaims struct {
	UserID int64 `json:"user_id"`
	jwt.RegisteredClaims
}

// credentialsRequest is the body of POST /register and POST /login.
type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// loginResponse is the body returned by a successful login.
type loginResponse struct {
	Token     string `json:"token"`
	ExpiresIn int64  `json:"expires_in"`
}

// issueToken signs an HS256 token for userID.
func (s *Server) issueToken(userID int64) (string, error) {
	now := time.Now()
	claims := tokenClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.TokenTTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// verifyToken validates a bearer token and returns its user id.
func (s *Server) verifyToken(raw string) (int64, error) {
	var claims tokenClaims
	_, err := jwt.ParseWithClaims(raw, &claims,
		func(*jwt.Token) (any, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return 0, err
	}
	if claims.UserID == 0 {
		return 0, errors.New("token has no user")
	}
	return claims.UserID, nil
}

// authMiddleware enforces bearer authentication and stores the user id.
func (s *Server) authMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if !strings.HasPrefix(authHeader, "Bearer ") {
			writeError(c, http.StatusUnauthorized, "Token is missing or invalid")
			return
		}
		userID, err := s.verifyToken(strings.TrimPrefix(authHeader, "Bearer "))
		if err != nil {
			if errors.Is(err, jwt.ErrTokenExpired) {
				writeError(c, http.StatusUnauthorized, "Token has expired")
				return
			}
			writeError(c, http.StatusUnauthorized, "Invalid token")
			return
		}
		c.Set(ctxKeyUserID, userID)
		c.Next()
	}
}

// handleRegister creates a user with a bcrypt password hash.
func (s *Server) handleRegister(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Username == "" || req.Password == "" {
		writeError(c, http.StatusBadRequest, "Username and password are required")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.cfg.BcryptCost)
	if err != nil {
		s.logger.Error("hash password", slog.Any("err", err))
		writeError(c, http.StatusInternalServerError, "Failed to create user")
		return
	}

	if _, err := s.store.CreateUser(c.Request.Context(), req.Username, hash); err != nil {
		if errors.Is(err, storage.ErrUsernameTaken) {
			writeError(c, http.StatusConflict, "Username already exists")
			return
		}
		s.logger.Error("create user", slog.Any("err", err))
		writeError(c, http.StatusInternalServerError, "Failed to create user")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "User created successfully"})
}

// handleLogin validates credentials and issues a bearer token.
// Unknown users and wrong passwords get the same answer.
func (s *Server) handleLogin(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Username == "" || req.Password == "" {
		writeError(c, http.StatusBadRequest, "Username and password are required")
		return
	}

	user, err := s.store.UserByUsername(c.Request.Context(), req.Username)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		s.logger.Error("lookup user", slog.Any("err", err))
		writeError(c, http.StatusInternalServerError, "Failed to login")
		return
	}
	if err != nil || bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(req.Password)) != nil {
		writeError(c, http.StatusUnauthorized, "Invalid username or password")
		return
	}

	token, err := s.issueToken(user.ID)
	if err != nil {
		s.logger.Error("sign token", slog.Any("err", err))
		writeError(c, http.StatusInternalServerError, "Failed to login")
		return
	}

	c.JSON(http.StatusOK, loginResponse{Token: token, ExpiresIn: int64(s.cfg.TokenTTL / time.Second)})
}

// userID returns the authenticated user set by authMiddleware.
func userID(c *gin.Context) int64 {
	return c.GetInt64(ctxKeyUserID)
}

