package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strings"
	"time"

	"TaskAPI/models"
	"TaskAPI/response"

	"github.com/golang-jwt/jwt/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
)

const (
	roleUser  = "user"
	roleAdmin = "admin"

	tokenTTL = 24 * time.Hour
)

// AuthConfig holds the signing key and the two accounts allowed to log in.
// An empty SecretKey disables authentication for every route.
type AuthConfig struct {
	SecretKey     []byte
	AdminUsername string
	AdminPassword string
	UserUsername  string
	UserPassword  string
}

// Enabled reports whether requests must carry a bearer token.
func (a AuthConfig) Enabled() bool {
	return len(a.SecretKey) > 0
}

// role returns the role of the matching account, or "" when the credentials are unknown.
func (a AuthConfig) role(u models.User) string {
	switch {
	case a.AdminUsername != "" && u.Username == a.AdminUsername && u.Password == a.AdminPassword:
		return roleAdmin
	case a.UserUsername != "" && u.Username == a.UserUsername && u.Password == a.UserPassword:
		return roleUser
	}
	return ""
}

// CreateToken generates a JWT token with the given username and role.
// The token is signed using the HS256 algorithm and includes an expiration time of 24 hours.
// It returns the generated token string in the format "Bearer <token>".
func (a AuthConfig) CreateToken(username string, role string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256,
		jwt.MapClaims{
			"username": username,
			"Role":     role,
			"exp":      time.Now().Add(tokenTTL).Unix(),
		})

	tokenString, err := token.SignedString(a.SecretKey)
	if err != nil {
		return "", err
	}
	return "Bearer " + tokenString, nil
}

// VerifyToken verifies the validity of a JWT token and extracts the role from its claims.
func (a AuthConfig) VerifyToken(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		return a.SecretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return "", err
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", errors.New("invalid token claims")
	}
	role, ok := claims["Role"].(string)
	if !ok {
		return "", errors.New("role not found in token claims")
	}
	return role, nil
}

// authorize checks the Authorization header when auth is enabled. It answers 401 itself
// when the token is missing or invalid, and 403 when the token carries none of the allowed roles.
func (h *Handler) authorize(res http.ResponseWriter, req *http.Request, fields logrus.Fields, roles ...string) bool {
	if !h.auth.Enabled() {
		return true
	}
	header := req.Header.Get("Authorization")
	tokenString, found := strings.CutPrefix(header, "Bearer ")
	if !found || tokenString == "" {
		h.log.WithFields(fields).Error("missing authorization header")
		writeJSON(res, http.StatusUnauthorized, response.Detail{Detail: "Not authenticated"})
		return false
	}
	role, err := h.auth.VerifyToken(tokenString)
	if err != nil {
		h.log.WithFields(fields).Error(fmt.Sprintf("invalid token: %v", err))
		writeJSON(res, http.StatusUnauthorized, response.Detail{Detail: "Invalid token"})
		return false
	}
	if !slices.Contains(roles, role) {
		h.log.WithFields(fields).WithField("role", role).Error("unauthorized role")
		writeJSON(res, http.StatusForbidden, response.Detail{Detail: "Forbidden role"})
		return false
	}
	return true
}

// LoginHandler handles the login request and returns a token for a known account.
// It is only routed when auth is enabled.
//
// Example request body:
//
//	{
//	  "username": "admin",
//	  "password": "admin"
//	}
//
// Example response:
//
//	{
//	  "token": "Bearer eyJhbGciOi..."
//	}
//
//	@Summary	Log in
//	@Tags		auth
//	@Accept		json
//	@Produce	json
//	@Param		credentials	body		models.User	true	"Username and password"
//	@Success	200			{object}	response.Token
//	@Failure	401			{object}	response.Detail
//	@Router		/login [post]
func (h *Handler) LoginHandler(res http.ResponseWriter, req *http.Request, endPointCounter *prometheus.CounterVec, errorCounter *prometheus.CounterVec) {
	const endpoint = "/login"
	endPointCounter.WithLabelValues(endpoint).Inc()
	fields := logrus.Fields{
		"task operation": "logging in user",
		"request":        "POST /login",
	}

	var u models.User
	if err := json.NewDecoder(req.Body).Decode(&u); err != nil {
		errorCounter.WithLabelValues(endpoint).Inc()
		h.log.WithFields(fields).Error("invalid request body")
		writeJSON(res, http.StatusUnauthorized, response.Detail{Detail: "Invalid credentials"})
		return
	}
	if err := h.validate.Struct(u); err != nil {
		errorCounter.WithLabelValues(endpoint).Inc()
		h.log.WithFields(fields).Error("missing credentials")
		writeJSON(res, http.StatusUnauthorized, response.Detail{Detail: "Invalid credentials"})
		return
	}

	u.Role = h.auth.role(u)
	if u.Role == "" {
		errorCounter.WithLabelValues(endpoint).Inc()
		h.log.WithFields(fields).Error("Invalid credentials")
		writeJSON(res, http.StatusUnauthorized, response.Detail{Detail: "Invalid credentials"})
		return
	}

	tokenString, err := h.auth.CreateToken(u.Username, u.Role)
	if err != nil {
		errorCounter.WithLabelValues(endpoint).Inc()
		h.internalError(res, fields, fmt.Errorf("error with creating token: %w", err))
		return
	}
	h.log.WithFields(fields).WithField("role", u.Role).Info("user logged in")
	writeJSON(res, http.StatusOK, response.Token{Token: tokenString})
}
