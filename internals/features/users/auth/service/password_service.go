package service

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	authHelper "kunskapsarvet_backend/internals/features/users/auth/helper"
	authModel "kunskapsarvet_backend/internals/features/users/auth/model"
	authRepo "kunskapsarvet_backend/internals/features/users/auth/repository"
	helper "kunskapsarvet_backend/internals/helpers"
)

const resetTokenTTL = 1 * time.Hour

func newResetToken() (plain string, hash []byte, err error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", nil, err
	}
	plain = hex.EncodeToString(buf)
	sum := sha256.Sum256([]byte(plain))
	return plain, sum[:], nil
}

// ========================== FORGOT PASSWORD ==========================
// Issues a single-use reset token. There is no mailer yet, so the token is
// written to the server log for the operator to relay.
// TODO: send the token by email once an SMTP provider is configured.
func ForgotPassword(db *gorm.DB, c *fiber.Ctx) error {
	var input struct {
		Email string `json:"email"`
	}
	if err := c.BodyParser(&input); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request format")
	}

	user, err := authRepo.FindUserByEmail(db, input.Email)
	if err != nil {
		// Same response for unknown emails, no account probing.
		return helper.JsonOK(c, "Om kontot finns har en återställningslänk skickats", nil)
	}

	plain, hash, err := newResetToken()
	if err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to generate reset token")
	}

	if err := authRepo.CreatePasswordResetToken(db, &authModel.PasswordResetToken{
		UserID:    user.ID,
		TokenHash: hash,
		ExpiresAt: time.Now().UTC().Add(resetTokenTTL),
	}); err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to store reset token")
	}

	log.Printf("[RESET] password reset token for %s: %s", user.Email, plain)

	return helper.JsonOK(c, "Om kontot finns har en återställningslänk skickats", nil)
}

// ========================== RESET PASSWORD ==========================
func ResetPassword(db *gorm.DB, c *fiber.Ctx) error {
	var input struct {
		Token       string `json:"token"`
		NewPassword string `json:"new_password"`
	}
	if err := c.BodyParser(&input); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request format")
	}
	if input.Token == "" {
		return helper.JsonError(c, fiber.StatusBadRequest, "Missing reset token")
	}
	if err := authHelper.ValidateNewPassword(input.NewPassword); err != nil {
		return helper.JsonError(c, fiber.StatusUnprocessableEntity, err.Error())
	}

	sum := sha256.Sum256([]byte(input.Token))
	stored, err := authRepo.FindValidResetTokenByHash(db, sum[:])
	if err != nil {
		return helper.JsonError(c, fiber.StatusUnauthorized, "Ogiltig eller utgången återställningslänk")
	}

	newHash, err := authHelper.HashPassword(input.NewPassword)
	if err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to hash password")
	}

	if err := authRepo.UpdateUserPassword(db, stored.UserID, newHash); err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to update password")
	}
	if err := authRepo.MarkResetTokenUsed(db, stored.ID); err != nil {
		log.Printf("[WARN] mark reset token used: %v", err)
	}

	return helper.JsonUpdated(c, "Lösenordet har återställts", nil)
}

// ========================== CHANGE PASSWORD ==========================
func ChangePassword(db *gorm.DB, c *fiber.Ctx) error {
	var input struct {
		CurrentPassword string `json:"current_password"`
		NewPassword     string `json:"new_password"`
	}
	if err := c.BodyParser(&input); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid input format")
	}

	v := c.Locals("user_id")
	userIDStr, ok := v.(string)
	if !ok || userIDStr == "" {
		return helper.JsonError(c, fiber.StatusUnauthorized, "Unauthorized")
	}
	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return helper.JsonError(c, fiber.StatusUnauthorized, "Invalid user id")
	}

	user, err := authRepo.FindUserByID(db, userID)
	if err != nil {
		return helper.JsonError(c, fiber.StatusUnauthorized, "User not found")
	}

	if err := authHelper.CheckPasswordHash(user.Password, input.CurrentPassword); err != nil {
		return helper.JsonError(c, fiber.StatusUnauthorized, "Nuvarande lösenord är felaktigt")
	}
	if err := authHelper.ValidateNewPassword(input.NewPassword); err != nil {
		return helper.JsonError(c, fiber.StatusUnprocessableEntity, err.Error())
	}

	newHash, err := authHelper.HashPassword(input.NewPassword)
	if err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to hash new password")
	}

	if err := authRepo.UpdateUserPassword(db, userID, newHash); err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to update password")
	}

	return helper.JsonUpdated(c, "Lösenordet har ändrats", nil)
}
