package helpers

import (
	"errors"
	"regexp"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPasswordHash returns nil when password matches the stored hash.
func CheckPasswordHash(hash, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}

func isAlphaNumeric(s string) bool {
	hasLetter := regexp.MustCompile(`[A-Za-z]`).MatchString(s)
	hasNumber := regexp.MustCompile(`[0-9]`).MatchString(s)
	return hasLetter && hasNumber
}

func isValidEmail(email string) bool {
	re := regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	return re.MatchString(email)
}

func ValidateRegisterInput(userName, email, password string) error {
	if strings.TrimSpace(userName) == "" {
		return errors.New("användarnamn krävs")
	}
	if !isValidEmail(strings.TrimSpace(email)) {
		return errors.New("ogiltig e-postadress")
	}
	return ValidateNewPassword(password)
}

func ValidateLoginInput(identifier, password string) error {
	if strings.TrimSpace(identifier) == "" {
		return errors.New("e-post eller användarnamn krävs")
	}
	if password == "" {
		return errors.New("lösenord krävs")
	}
	return nil
}

func ValidateNewPassword(password string) error {
	if len(password) < 8 {
		return errors.New("lösenordet måste vara minst 8 tecken")
	}
	if !isAlphaNumeric(password) {
		return errors.New("lösenordet måste innehålla både bokstäver och siffror")
	}
	return nil
}
