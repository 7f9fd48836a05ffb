package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"
	"wymiana-plikow/internal/auth"
	"wymiana-plikow/internal/database"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jaevor/go-nanoid"
)

type SignupRequest struct {
	Username string `json:"username" example:"alice"`
	Email    string `json:"email" example:"alice@example.com"`
	Password string `json:"password" example:"password123"`
}

type SignupResponse struct {
	ID       int64  `json:"id" example:"1"`
	Username string `json:"username" example:"alice"`
	Email    string `json:"email" example:"alice@example.com"`
	Verified bool   `json:"verified" example:"false"`
}

// @Summary      Register a new user
// @Description  Creates an unverified account and sends a verification link to the given email address. Delivery failures do not undo the registration.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        signupRequest  body      SignupRequest  true  "Registration data"
// @Success      201            {object}  SignupResponse
// @Failure      400            {string}  string "Invalid request body or duplicate email/username"
// @Failure      500            {string}  string "Internal Server Error"
// @Router       /auth/signup [post]
func (s *Server) SignupHandler(w http.ResponseWriter, r *http.Request) {
	var req SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)
	if req.Username == "" || req.Email == "" || req.Password == "" {
		http.Error(w, "Username, email and password are required", http.StatusBadRequest)
		return
	}

	passwordHash, err := auth.HashPassword(req.Password)
	if err != nil {
		log.Printf("ERROR: Failed to hash password: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	verificationToken := uuid.NewString()

	user, err := s.store.CreateUser(r.Context(), database.CreateUserParams{
		Username:          req.Username,
		Email:             req.Email,
		PasswordHash:      passwordHash,
		VerificationToken: verificationToken,
	})
	if err != nil {
		if errors.Is(err, database.ErrEmailTaken) || errors.Is(err, database.ErrUsernameTaken) {
			http.Error(w, "User already exists", http.StatusBadRequest)
			return
		}
		log.Printf("ERROR: Failed to create user: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	// Best-effort: a bounced mail must not undo the registration.
	verifyLink := fmt.Sprintf("%s/api/v1/auth/verify-email?token=%s", s.config.AppHost, verificationToken)
	body := fmt.Sprintf("Please verify your account by clicking the following link:\n%s", verifyLink)
	if err := s.mailer.Send(r.Context(), user.Email, "Account Verification", body); err != nil {
		log.Printf("ERROR: Failed to send verification email to %s: %v", user.Email, err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(SignupResponse{
		ID:       user.ID,
		Username: user.Username,
		Email:    user.Email,
		Verified: user.Verified,
	})
}

// @Summary      Verify email address
// @Description  Consumes a one-time verification token. A second presentation of the same token fails.
// @Tags         auth
// @Produce      json
// @Param        token  query     string  true  "Verification token"
// @Success      200    {string}  string "Email verified"
// @Failure      400    {string}  string "Invalid verification token"
// @Failure      500    {string}  string "Internal Server Error"
// @Router       /auth/verify-email [get]
func (s *Server) VerifyEmailHandler(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		http.Error(w, "Verification token is required", http.StatusBadRequest)
		return
	}

	consumed, err := s.store.ConsumeVerificationToken(r.Context(), token)
	if err != nil {
		log.Printf("ERROR: Failed to consume verification token: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	if !consumed {
		http.Error(w, "Invalid verification token", http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"message": "Email verified. You can now log in."})
}

type LoginRequest struct {
	Email    string `json:"email" example:"alice@example.com"`
	Password string `json:"password" example:"password123"`
}

type TokenResponse struct {
	AccessToken  string `json:"access_token" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9...."`
	RefreshToken string `json:"refresh_token" example:"V1StGXR8_Z5jdHi6B-myT78q_Z5jdHi6B-myT78q"`
}

// @Summary      Logs a user in
// @Description  Authenticates a user and returns a short-lived access token and a long-lived refresh token.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        loginRequest   body      LoginRequest  true  "Login Credentials"
// @Success      200            {object}  TokenResponse
// @Failure      400            {string}  string "Invalid request body"
// @Failure      401            {string}  string "Invalid email or password"
// @Failure      500            {string}  string "Internal Server Error"
// @Router       /auth/login [post]
func (s *Server) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	user, err := s.store.GetUserByEmail(r.Context(), req.Email)
	if err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	if user == nil || !auth.CheckPasswordHash(req.Password, user.PasswordHash) {
		http.Error(w, "Invalid email or password", http.StatusUnauthorized)
		return
	}

	accessToken, err := auth.GenerateJWT(user, s.config.JWT.Secret)
	if err != nil {
		http.Error(w, "Failed to generate access token", http.StatusInternalServerError)
		return
	}

	generateID, err := nanoid.Standard(40)
	if err != nil {
		log.Printf("CRITICAL: Failed to initialize nanoid generator: %v", err)
		http.Error(w, "Internal server error (token generation)", http.StatusInternalServerError)
		return
	}
	refreshToken := generateID()
	expiresAt := time.Now().Add(24 * time.Hour)

	sessionParams := database.CreateSessionParams{
		ID:           uuid.New(),
		UserID:       user.ID,
		RefreshToken: refreshToken,
		UserAgent:    r.UserAgent(),
		ClientIP:     r.RemoteAddr,
		ExpiresAt:    expiresAt,
	}

	err = s.store.CreateSession(r.Context(), sessionParams)
	if err != nil {
		log.Printf("ERROR: Failed to create session for user %d: %v", user.ID, err)
		http.Error(w, "Failed to process login session", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	})
}

var errInvalidRefreshToken = errors.New("invalid or expired refresh token")

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" example:"V1StGXR8_Z5jdHi6B-myT78q_Z5jdHi6B-myT78q"`
}

// @Summary      Refresh access token
// @Description  Provides a new short-lived access token and a new refresh token in exchange for a valid, non-expired refresh token. Implements refresh token rotation.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        refreshTokenRequest   body      RefreshTokenRequest  true  "Refresh Token"
// @Success      200                   {object}  TokenResponse
// @Failure      400                   {string}  string "Invalid request body or missing token"
// @Failure      401                   {string}  string "Invalid or expired refresh token"
// @Failure      500                   {string}  string "Internal Server Error"
// @Router       /auth/refresh [post]
func (s *Server) RefreshTokenHandler(w http.ResponseWriter, r *http.Request) {
	var req RefreshTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.RefreshToken == "" {
		http.Error(w, "Refresh token is required", http.StatusBadRequest)
		return
	}

	var newAccessToken, newRefreshToken string

	txErr := s.store.ExecTx(r.Context(), func(q *database.Queries) error {
		user, err := q.GetUserByRefreshToken(r.Context(), req.RefreshToken)
		if err != nil {
			return err
		}
		if user == nil {
			return errInvalidRefreshToken
		}

		if err := q.DeleteSessionByRefreshToken(r.Context(), req.RefreshToken); err != nil {
			return err
		}

		newAccessToken, err = auth.GenerateJWT(user, s.config.JWT.Secret)
		if err != nil {
			return err
		}

		generateID, _ := nanoid.Standard(40)
		newRefreshToken = generateID()
		sessionParams := database.CreateSessionParams{
			ID:           uuid.New(),
			UserID:       user.ID,
			RefreshToken: newRefreshToken,
			UserAgent:    r.UserAgent(),
			ClientIP:     r.RemoteAddr,
			ExpiresAt:    time.Now().Add(24 * time.Hour),
		}
		return q.CreateSession(r.Context(), sessionParams)
	})

	if txErr != nil {
		if errors.Is(txErr, errInvalidRefreshToken) {
			http.Error(w, txErr.Error(), http.StatusUnauthorized)
		} else {
			log.Printf("ERROR: Refresh token transaction failed: %v", txErr)
			http.Error(w, "Failed to refresh token", http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(TokenResponse{
		AccessToken:  newAccessToken,
		RefreshToken: newRefreshToken,
	})
}

type ForgotPasswordRequest struct {
	Email string `json:"email" example:"alice@example.com"`
}

// @Summary      Request a password reset
// @Description  Mints a one-time reset token valid for one hour and mails the reset link. The token stays valid even if the mail bounces.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        forgotPasswordRequest  body      ForgotPasswordRequest  true  "Account email"
// @Success      200                    {string}  string "Password reset email sent"
// @Failure      400                    {string}  string "Invalid request body"
// @Failure      404                    {string}  string "User not found"
// @Failure      500                    {string}  string "Internal Server Error"
// @Router       /auth/forgot-password [post]
func (s *Server) ForgotPasswordHandler(w http.ResponseWriter, r *http.Request) {
	var req ForgotPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Email == "" {
		http.Error(w, "Email is required", http.StatusBadRequest)
		return
	}

	user, err := s.store.GetUserByEmail(r.Context(), req.Email)
	if err != nil {
		log.Printf("ERROR: Failed to look up user %s: %v", req.Email, err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	if user == nil {
		http.Error(w, "User not found", http.StatusNotFound)
		return
	}

	resetToken := uuid.NewString()
	expiresAt := time.Now().Add(1 * time.Hour)

	if err := s.store.SetResetToken(r.Context(), user.ID, resetToken, expiresAt); err != nil {
		log.Printf("ERROR: Failed to set reset token for user %d: %v", user.ID, err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	resetLink := fmt.Sprintf("%s/api/v1/auth/reset-password/%s", s.config.AppHost, resetToken)
	body := fmt.Sprintf("You are receiving this because you (or someone else) have requested the reset of the password for your account.\n"+
		"Please click on the following link, or paste it into your browser to complete the process:\n%s", resetLink)
	if err := s.mailer.Send(r.Context(), user.Email, "Password Reset", body); err != nil {
		// Token już wydany; sama wysyłka jest best-effort.
		log.Printf("ERROR: Failed to send password reset email to %s: %v", user.Email, err)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"message": "Password reset email sent"})
}

// @Summary      Validate a reset token
// @Description  Checks whether a password reset token exists and has not expired yet. Expiry is evaluated lazily at lookup time.
// @Tags         auth
// @Produce      json
// @Param        token  path      string  true  "Reset token"
// @Success      200    {string}  string "Token is valid"
// @Failure      400    {string}  string "Token invalid or expired"
// @Failure      500    {string}  string "Internal Server Error"
// @Router       /auth/reset-password/{token} [get]
func (s *Server) ResetPasswordFormHandler(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")

	user, err := s.store.GetUserByResetToken(r.Context(), token)
	if err != nil {
		log.Printf("ERROR: Failed to look up reset token: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	if user == nil {
		http.Error(w, "Password reset token is invalid or has expired", http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"token": token})
}

type UpdatePasswordRequest struct {
	Password        string `json:"password" example:"newPassword123"`
	ConfirmPassword string `json:"confirm_password" example:"newPassword123"`
}

// @Summary      Update password via reset token
// @Description  Consumes the one-time reset token and replaces the password hash. The token and its expiry are cleared in the same statement.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        token                  path      string                 true  "Reset token"
// @Param        updatePasswordRequest  body      UpdatePasswordRequest  true  "New password"
// @Success      200                    {string}  string "Password has been updated"
// @Failure      400                    {string}  string "Mismatched passwords or invalid/expired token"
// @Failure      500                    {string}  string "Internal Server Error"
// @Router       /auth/reset-password/{token} [post]
func (s *Server) UpdatePasswordHandler(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")

	var req UpdatePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if req.Password == "" || req.Password != req.ConfirmPassword {
		http.Error(w, "Passwords do not match", http.StatusBadRequest)
		return
	}

	passwordHash, err := auth.HashPassword(req.Password)
	if err != nil {
		log.Printf("ERROR: Failed to hash password: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	consumed, err := s.store.ConsumeResetToken(r.Context(), token, passwordHash)
	if err != nil {
		log.Printf("ERROR: Failed to consume reset token: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	if !consumed {
		http.Error(w, "Password reset token is invalid or has expired", http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"message": "Password has been updated"})
}
