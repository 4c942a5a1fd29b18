package models

import (
	"fmt"
	"net/mail"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// User is an account. The profile lives in Profile.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email,omitempty"`
	PasswordHash string    `json:"-"`
	Language     string    `json:"language"`
	CreatedAt    time.Time `json:"created_at"`
}

var usernameFolder = cases.Fold()

// UsernameKey is the form usernames are compared in: NFKC normalized and
// case folded, so "Ｎｉｇｈｔ" and "night" collide.
func UsernameKey(username string) string {
	return usernameFolder.String(norm.NFKC.String(strings.TrimSpace(username)))
}

type CreateUserRequest struct {
	Username    string `json:"username"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name"`
	Avatar      string `json:"avatar"`
	Language    string `json:"language"`
}

func (r *CreateUserRequest) Validate() error {
	r.Username = norm.NFKC.String(strings.TrimSpace(r.Username))
	n := utf8.RuneCountInString(r.Username)
	if n < 3 || n > 24 {
		return fmt.Errorf("username must be between 3 and 24 characters")
	}
	for _, ch := range r.Username {
		if !isValidUsernameChar(ch) {
			return fmt.Errorf("username can only contain letters, numbers, dots and underscores")
		}
	}

	email, err := normalizeEmail(r.Email)
	if err != nil {
		return err
	}
	r.Email = email

	if err := validatePassword(r.Password); err != nil {
		return err
	}

	r.DisplayName = strings.TrimSpace(r.DisplayName)
	if utf8.RuneCountInString(r.DisplayName) > MaxDisplayNameLen {
		return fmt.Errorf("display name must be at most %d characters", MaxDisplayNameLen)
	}

	if r.Avatar == "" {
		r.Avatar = AvatarMale
	}
	if !IsValidAvatar(r.Avatar) {
		return fmt.Errorf("avatar must be %q or %q", AvatarMale, AvatarFemale)
	}
	return nil
}

// LoginRequest accepts either a username or an email in Login.
type LoginRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

func (r *LoginRequest) Validate() error {
	r.Login = strings.TrimSpace(r.Login)
	if r.Login == "" {
		return fmt.Errorf("username or email is required")
	}
	if r.Password == "" {
		return fmt.Errorf("password is required")
	}
	return nil
}

// IsEmail reports whether Login looks like an email rather than a username.
func (r *LoginRequest) IsEmail() bool {
	return strings.Contains(r.Login, "@")
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

func (r *RefreshRequest) Validate() error {
	if strings.TrimSpace(r.RefreshToken) == "" {
		return fmt.Errorf("refresh_token is required")
	}
	return nil
}

func isValidUsernameChar(ch rune) bool {
	return unicode.IsLetter(ch) || unicode.IsDigit(ch) || ch == '_' || ch == '.'
}

func validatePassword(p string) error {
	n := utf8.RuneCountInString(p)
	if n < 8 {
		return fmt.Errorf("password must be at least 8 characters")
	}
	// bcrypt ignores everything after 72 bytes.
	if len(p) > 72 {
		return fmt.Errorf("password must be at most 72 bytes")
	}
	return nil
}

func normalizeEmail(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("email is required")
	}
	addr, err := mail.ParseAddress(raw)
	if err != nil || addr.Address != raw || !strings.Contains(raw[strings.LastIndex(raw, "@"):], ".") {
		return "", fmt.Errorf("invalid email format")
	}
	return strings.ToLower(raw), nil
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

func (r *ChangePasswordRequest) Validate() error {
	if r.CurrentPassword == "" {
		return fmt.Errorf("current password is required")
	}
	if r.CurrentPassword == r.NewPassword {
		return fmt.Errorf("new password must be different from current password")
	}
	return validatePassword(r.NewPassword)
}

type UpdateLanguageRequest struct {
	Language string `json:"language"`
}

func (r *UpdateLanguageRequest) Validate() error {
	r.Language = strings.TrimSpace(r.Language)
	if r.Language == "" {
		return fmt.Errorf("language is required")
	}
	return nil
}
