package handlers

import (
	"errors"
	"net/mail"
	"strings"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"

	"github.com/foxxcyber/receipt-grammar/internal/database"
	"github.com/foxxcyber/receipt-grammar/internal/middleware"
	"github.com/foxxcyber/receipt-grammar/internal/models"
)

const (
	minPasswordLen    = 8
	maxDisplayNameLen = 100
)

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// validEmail accepts a bare address whose domain has a dot
func validEmail(email string) bool {
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return false
	}
	at := strings.LastIndex(email, "@")
	return strings.Contains(email[at+1:], ".")
}

// registrationProblem returns the client-facing reason req is rejected,
// or "" when it is acceptable.
func registrationProblem(req *models.RegisterRequest) string {
	if !validEmail(req.Email) {
		return "invalid email format"
	}
	if len(req.Password) < minPasswordLen {
		return "password must be at least 8 characters"
	}
	if req.DisplayName != nil && len(*req.DisplayName) > maxDisplayNameLen {
		return "display name must be at most 100 characters"
	}
	return ""
}

// Register creates an account and signs it in
func (h *Handler) Register(c *fiber.Ctx) error {
	var req models.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return Error(c, fiber.StatusBadRequest, "invalid request body")
	}
	req.Email = normalizeEmail(req.Email)
	if msg := registrationProblem(&req); msg != "" {
		return Error(c, fiber.StatusBadRequest, msg)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return Error(c, fiber.StatusInternalServerError, "failed to process password")
	}

	user, err := h.users.CreateUser(c.Context(), req.Email, string(hash), req.DisplayName)
	switch {
	case errors.Is(err, database.ErrEmailExists):
		return Error(c, fiber.StatusConflict, "email already registered")
	case err != nil:
		return Error(c, fiber.StatusInternalServerError, "failed to create user")
	}

	return h.startSession(c, fiber.StatusCreated, user)
}

// Login exchanges credentials for a session token
func (h *Handler) Login(c *fiber.Ctx) error {
	var req models.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return Error(c, fiber.StatusBadRequest, "invalid request body")
	}
	if req.Email == "" || req.Password == "" {
		return Error(c, fiber.StatusBadRequest, "email and password are required")
	}

	user, err := h.users.GetUserByEmail(c.Context(), normalizeEmail(req.Email))
	switch {
	case errors.Is(err, database.ErrUserNotFound):
		return Error(c, fiber.StatusUnauthorized, "invalid credentials")
	case err != nil:
		return Error(c, fiber.StatusInternalServerError, "authentication failed")
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		return Error(c, fiber.StatusUnauthorized, "invalid credentials")
	}

	// A stale last-login stamp must not block sign-in.
	_ = h.users.UpdateUserLastLogin(c.Context(), user.ID)

	return h.startSession(c, fiber.StatusOK, user)
}

func (h *Handler) startSession(c *fiber.Ctx, status int, user *models.User) error {
	token, expires, err := middleware.IssueToken(h.cfg, user)
	if err != nil {
		return Error(c, fiber.StatusInternalServerError, "failed to generate token")
	}
	return c.Status(status).JSON(models.AuthResponse{
		Token:     token,
		ExpiresAt: expires,
		User:      user,
	})
}

// GetAccount returns the signed-in user with how many receipts they keep
// and how long each one is retained
func (h *Handler) GetAccount(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	if userID == 0 {
		return Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	user, err := h.users.GetUserByID(c.Context(), userID)
	switch {
	case errors.Is(err, database.ErrUserNotFound):
		return Error(c, fiber.StatusNotFound, "user not found")
	case err != nil:
		return Error(c, fiber.StatusInternalServerError, "failed to get user")
	}

	_, count, err := h.receipts.ListReceipts(c.Context(), &models.ReceiptListParams{UserID: userID, Limit: 1})
	if err != nil {
		return Error(c, fiber.StatusInternalServerError, "failed to count receipts")
	}

	return Success(c, models.Account{
		User:          user,
		ReceiptCount:  count,
		RetentionDays: int(h.cfg.ReceiptRetention.Hours() / 24),
		MaxUploadMB:   h.cfg.MaxUploadMB,
	})
}
