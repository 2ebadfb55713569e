// backend/src/handlers/user_handler.go
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/username/splitledger/backend/src/config"
	"github.com/username/splitledger/backend/src/database"
	"github.com/username/splitledger/backend/src/logger"
	"github.com/username/splitledger/backend/src/model"
	"github.com/username/splitledger/backend/src/security"
	"github.com/username/splitledger/backend/src/security/validation"
	"github.com/username/splitledger/backend/src/utils"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

const minPasswordLength = 8

type UserHandler struct {
	authService *security.AuthService
}

func NewUserHandler(authService *security.AuthService) *UserHandler {
	return &UserHandler{authService: authService}
}

type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type ChangePasswordRequest struct {
	Password     string `json:"password"`
	NewPassword  string `json:"new_password"`
	NewPassword2 string `json:"new_password2"`
}

func (h *UserHandler) RegisterUserHandler(w http.ResponseWriter, r *http.Request) {
	if !config.Cfg.RegistrationEnabled {
		utils.SendJSONError(w, "Registration is disabled", http.StatusForbidden)
		return
	}

	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.SendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	req.Username = validation.SanitizeUserInput(req.Username)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	if err := validation.ValidateStringNotEmpty(req.Username, "username"); err != nil {
		utils.SendJSONError(w, "Username cannot be empty", http.StatusBadRequest)
		return
	}
	if !emailRegex.MatchString(req.Email) {
		utils.SendJSONError(w, "Invalid email format", http.StatusBadRequest)
		return
	}
	if len(req.Password) < minPasswordLength {
		utils.SendJSONError(w, fmt.Sprintf("Password must be at least %d characters", minPasswordLength), http.StatusBadRequest)
		return
	}

	if _, err := model.GetUserByEmail(database.DB, req.Email); err == nil {
		utils.SendJSONError(w, "An account with this email already exists", http.StatusConflict)
		return
	}
	if _, err := model.GetUserByUsername(database.DB, req.Username); err == nil {
		utils.SendJSONError(w, "This username is already taken", http.StatusConflict)
		return
	}

	user := &model.User{
		Username:     req.Username,
		Email:        req.Email,
		AuthProvider: "local",
		IsVerified:   false,
	}
	if err := user.HashPassword(req.Password); err != nil {
		logger.L.Error("Failed to hash password during registration", "error", err)
		utils.SendJSONError(w, "Failed to register user", http.StatusInternalServerError)
		return
	}
	if err := user.CreateUser(database.DB); err != nil {
		logger.L.Error("Failed to create user", "error", err)
		utils.SendJSONError(w, "Failed to register user", http.StatusInternalServerError)
		return
	}

	logger.L.Info("User registered", "userID", user.ID, "username", user.Username)
	utils.WriteJSON(w, http.StatusCreated, user)
}

func (h *UserHandler) LoginUserHandler(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.SendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	user, err := model.GetUserByUsername(database.DB, strings.TrimSpace(req.Username))
	if err != nil {
		logger.L.Info("Login failed, user not found", "username", req.Username)
		utils.SendJSONError(w, "Invalid username or password", http.StatusUnauthorized)
		return
	}
	if err := user.CheckPassword(req.Password); err != nil {
		logger.L.Info("Login failed, wrong password", "userID", user.ID)
		utils.SendJSONError(w, "Invalid username or password", http.StatusUnauthorized)
		return
	}

	h.issueSession(w, user)
}

func (h *UserHandler) RefreshTokenHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.SendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	userIDStr, err := h.authService.ValidateRefreshToken(req.RefreshToken)
	if err != nil {
		utils.SendJSONError(w, "Invalid or expired refresh token", http.StatusUnauthorized)
		return
	}

	session, err := model.GetSessionByRefreshToken(database.DB, req.RefreshToken)
	if err != nil {
		logger.L.Warn("Refresh token not backed by a session", "error", err)
		utils.SendJSONError(w, "Invalid or expired refresh token", http.StatusUnauthorized)
		return
	}

	accessToken, err := h.authService.GenerateToken(userIDStr)
	if err != nil {
		logger.L.Error("Failed to generate access token on refresh", "error", err)
		utils.SendJSONError(w, "Failed to refresh session", http.StatusInternalServerError)
		return
	}
	refreshToken, err := h.authService.GenerateRefreshToken(userIDStr)
	if err != nil {
		logger.L.Error("Failed to generate refresh token on refresh", "error", err)
		utils.SendJSONError(w, "Failed to refresh session", http.StatusInternalServerError)
		return
	}

	expiresAt := time.Now().UTC().Add(config.Cfg.RefreshTokenExpiry)
	if err := session.UpdateTokens(database.DB, accessToken, refreshToken, expiresAt); err != nil {
		logger.L.Error("Failed to rotate session tokens", "sessionID", session.ID, "error", err)
		utils.SendJSONError(w, "Failed to refresh session", http.StatusInternalServerError)
		return
	}

	utils.WriteJSON(w, http.StatusOK, map[string]string{
		"token":         accessToken,
		"refresh_token": refreshToken,
	})
}

func (h *UserHandler) LogoutUserHandler(w http.ResponseWriter, r *http.Request) {
	tokenString := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	if tokenString != "" {
		if err := model.DeleteSessionByToken(database.DB, tokenString); err != nil {
			logger.L.Error("Failed to delete session on logout", "error", err)
		}
	}
	w.WriteHeader(http.StatusNoContent)
}

// ChangePasswordHandler verifies the current password and the confirmation
// before replacing the stored hash. All other sessions of the user are
// invalidated afterwards.
func (h *UserHandler) ChangePasswordHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required", http.StatusUnauthorized)
		return
	}

	var req ChangePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.SendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if req.NewPassword != req.NewPassword2 {
		utils.SendJSONError(w, "Passwords don't match", http.StatusBadRequest)
		return
	}
	if len(req.NewPassword) < minPasswordLength {
		utils.SendJSONError(w, fmt.Sprintf("Password must be at least %d characters", minPasswordLength), http.StatusBadRequest)
		return
	}

	user, err := model.GetUserByID(database.DB, userID)
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			utils.SendJSONError(w, "User not found", http.StatusNotFound)
			return
		}
		logger.L.Error("Failed to load user for password change", "userID", userID, "error", err)
		utils.SendJSONError(w, "Failed to change password", http.StatusInternalServerError)
		return
	}
	if user.AuthProvider != "local" {
		utils.SendJSONError(w, "Password changes are not available for this account", http.StatusBadRequest)
		return
	}
	if err := user.CheckPassword(req.Password); err != nil {
		logger.L.Info("Password change rejected, wrong current password", "userID", userID)
		utils.SendJSONError(w, "Current password is incorrect", http.StatusUnauthorized)
		return
	}

	updated := &model.User{}
	if err := updated.HashPassword(req.NewPassword); err != nil {
		logger.L.Error("Failed to hash new password", "userID", userID, "error", err)
		utils.SendJSONError(w, "Failed to change password", http.StatusInternalServerError)
		return
	}
	if err := user.UpdatePassword(database.DB, updated.Password); err != nil {
		logger.L.Error("Failed to store new password", "userID", userID, "error", err)
		utils.SendJSONError(w, "Failed to change password", http.StatusInternalServerError)
		return
	}

	if err := model.DeleteSessionsForUser(database.DB, userID); err != nil {
		logger.L.Error("Failed to invalidate sessions after password change", "userID", userID, "error", err)
	}

	logger.L.Info("Password changed", "userID", userID)
	utils.WriteJSON(w, http.StatusOK, map[string]string{"message": "Password changed successfully"})
}

type RequestPasswordResetRequest struct {
	Email string `json:"email"`
}

type ConfirmPasswordResetRequest struct {
	Token        string `json:"token"`
	NewPassword  string `json:"new_password"`
	NewPassword2 string `json:"new_password2"`
}

// RequestPasswordResetHandler creates a recovery token for the given email.
// The response is identical whether or not an account exists so the endpoint
// cannot be used to probe for registered addresses.
func (h *UserHandler) RequestPasswordResetHandler(w http.ResponseWriter, r *http.Request) {
	var req RequestPasswordResetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.SendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if !emailRegex.MatchString(req.Email) {
		utils.SendJSONError(w, "Invalid email format", http.StatusBadRequest)
		return
	}

	genericResponse := func() {
		utils.WriteJSON(w, http.StatusOK, map[string]string{
			"message": "If an account with this email exists, a reset link has been sent",
		})
	}

	user, err := model.GetUserByEmail(database.DB, req.Email)
	if err != nil {
		if !errors.Is(err, model.ErrUserNotFound) {
			logger.L.Error("Failed to look up user for password reset", "error", err)
			utils.SendJSONError(w, "Failed to request password reset", http.StatusInternalServerError)
			return
		}
		genericResponse()
		return
	}
	if user.AuthProvider != "local" {
		// OAuth accounts have no password to recover.
		genericResponse()
		return
	}

	recovery, err := model.CreatePasswordRecovery(database.DB, user.ID, config.Cfg.PasswordResetTokenExpiry)
	if err != nil {
		logger.L.Error("Failed to create password recovery token", "userID", user.ID, "error", err)
		utils.SendJSONError(w, "Failed to request password reset", http.StatusInternalServerError)
		return
	}

	// TODO: deliver the link by mail instead of logging it once an SMTP sender
	// is configured for the deployment.
	resetLink := fmt.Sprintf("%s/recover-password?token=%s", config.Cfg.FrontendBaseURL, recovery.Token)
	logger.L.Info("Password reset requested", "userID", user.ID, "resetLink", resetLink)
	genericResponse()
}

// ConfirmPasswordResetHandler redeems a recovery token for a new password and
// invalidates all of the user's sessions.
func (h *UserHandler) ConfirmPasswordResetHandler(w http.ResponseWriter, r *http.Request) {
	var req ConfirmPasswordResetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.SendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.NewPassword != req.NewPassword2 {
		utils.SendJSONError(w, "Passwords don't match", http.StatusBadRequest)
		return
	}
	if len(req.NewPassword) < minPasswordLength {
		utils.SendJSONError(w, fmt.Sprintf("Password must be at least %d characters", minPasswordLength), http.StatusBadRequest)
		return
	}

	recovery, err := model.GetPasswordRecoveryByToken(database.DB, strings.TrimSpace(req.Token))
	if err != nil {
		if !errors.Is(err, model.ErrRecoveryNotFound) {
			logger.L.Error("Failed to look up password recovery token", "error", err)
			utils.SendJSONError(w, "Failed to reset password", http.StatusInternalServerError)
			return
		}
		utils.SendJSONError(w, "Invalid or expired reset token", http.StatusUnauthorized)
		return
	}
	if recovery.Expired() {
		utils.SendJSONError(w, "Invalid or expired reset token", http.StatusUnauthorized)
		return
	}

	user, err := model.GetUserByID(database.DB, recovery.UserID)
	if err != nil {
		logger.L.Error("Failed to load user for password reset", "userID", recovery.UserID, "error", err)
		utils.SendJSONError(w, "Failed to reset password", http.StatusInternalServerError)
		return
	}

	updated := &model.User{}
	if err := updated.HashPassword(req.NewPassword); err != nil {
		logger.L.Error("Failed to hash new password on reset", "userID", user.ID, "error", err)
		utils.SendJSONError(w, "Failed to reset password", http.StatusInternalServerError)
		return
	}
	if err := user.UpdatePassword(database.DB, updated.Password); err != nil {
		logger.L.Error("Failed to store new password on reset", "userID", user.ID, "error", err)
		utils.SendJSONError(w, "Failed to reset password", http.StatusInternalServerError)
		return
	}

	if err := model.DeletePasswordRecoveriesForUser(database.DB, user.ID); err != nil {
		logger.L.Error("Failed to clear recovery tokens after reset", "userID", user.ID, "error", err)
	}
	if err := model.DeleteSessionsForUser(database.DB, user.ID); err != nil {
		logger.L.Error("Failed to invalidate sessions after password reset", "userID", user.ID, "error", err)
	}

	logger.L.Info("Password reset completed", "userID", user.ID)
	utils.WriteJSON(w, http.StatusOK, map[string]string{"message": "Password reset successfully"})
}

// issueSession creates tokens plus a DB session and writes the login response.
func (h *UserHandler) issueSession(w http.ResponseWriter, user *model.User) {
	userIDStr := fmt.Sprintf("%d", user.ID)

	accessToken, err := h.authService.GenerateToken(userIDStr)
	if err != nil {
		logger.L.Error("Failed to generate access token", "userID", user.ID, "error", err)
		utils.SendJSONError(w, "Failed to log in", http.StatusInternalServerError)
		return
	}
	refreshToken, err := h.authService.GenerateRefreshToken(userIDStr)
	if err != nil {
		logger.L.Error("Failed to generate refresh token", "userID", user.ID, "error", err)
		utils.SendJSONError(w, "Failed to log in", http.StatusInternalServerError)
		return
	}

	expiresAt := time.Now().UTC().Add(config.Cfg.RefreshTokenExpiry)
	if _, err := model.CreateSession(database.DB, user.ID, accessToken, refreshToken, expiresAt); err != nil {
		logger.L.Error("Failed to create session", "userID", user.ID, "error", err)
		utils.SendJSONError(w, "Failed to log in", http.StatusInternalServerError)
		return
	}

	logger.L.Info("User logged in", "userID", user.ID)
	utils.WriteJSON(w, http.StatusOK, map[string]any{
		"token":         accessToken,
		"refresh_token": refreshToken,
		"user":          user,
	})
}
