// Package auth gates write access behind a password per allow-listed
// identity, with self-service first-login and reset flows. It is not a
// general auth system: the allow-list is fixed configuration.
package auth

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/St0bbe/remix-of-our-little-pix/models"
)

var (
	// ErrNotAllowed means the identity is not on the allow-list at all
	ErrNotAllowed = errors.New("email is not authorized")
	// ErrIncorrectPassword means the identity is allowed but the password
	// did not match the stored hash
	ErrIncorrectPassword = errors.New("incorrect password")
	// ErrWeakPassword means the password is outside the accepted length range
	ErrWeakPassword = fmt.Errorf("password must be between %d and %d characters", models.MinPasswordLength, models.MaxPasswordLength)
)

// Service implements the credential store over the injected database handle
type Service struct {
	db      *gorm.DB
	allowed map[string]bool
	salt    string
}

// NewService creates the credential service. allowedEmails are normalized
// before lookup; salt is the application-wide hash salt.
func NewService(db *gorm.DB, allowedEmails []string, salt string) *Service {
	allowed := make(map[string]bool, len(allowedEmails))
	for _, email := range allowedEmails {
		allowed[models.NormalizeEmail(email)] = true
	}
	return &Service{db: db, allowed: allowed, salt: salt}
}

// IsAllowed reports whether the identity may authenticate at all,
// independent of whether a password has been set yet
func (s *Service) IsAllowed(email string) bool {
	return s.allowed[models.NormalizeEmail(email)]
}

// LoginResult carries the outcome of a successful login
type LoginResult struct {
	Email        string
	IsFirstLogin bool
}

// Login authenticates an identity. If the identity has no stored hash yet,
// this is a first login: the submitted password becomes canonical and
// IsFirstLogin is set on the result.
func (s *Service) Login(email, password string) (*LoginResult, error) {
	email = models.NormalizeEmail(email)
	if !s.allowed[email] {
		return nil, ErrNotAllowed
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}

	var cred models.Credential
	err := s.db.First(&cred, "email = ?", email).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		// First login: the submitted password becomes the stored hash
		cred = models.Credential{Email: email, PasswordHash: s.hash(password)}
		if err := s.db.Create(&cred).Error; err != nil {
			return nil, fmt.Errorf("failed to store credential: %w", err)
		}
		return &LoginResult{Email: email, IsFirstLogin: true}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up credential: %w", err)
	}

	if subtle.ConstantTimeCompare([]byte(cred.PasswordHash), []byte(s.hash(password))) != 1 {
		return nil, ErrIncorrectPassword
	}
	return &LoginResult{Email: email}, nil
}

// ChangePassword overwrites the stored hash after verifying the current
// password. The caller is responsible for only invoking this with an
// authenticated identity.
func (s *Service) ChangePassword(email, currentPassword, newPassword string) error {
	email = models.NormalizeEmail(email)
	if !s.allowed[email] {
		return ErrNotAllowed
	}
	if err := validatePassword(newPassword); err != nil {
		return err
	}

	var cred models.Credential
	if err := s.db.First(&cred, "email = ?", email).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrIncorrectPassword
		}
		return fmt.Errorf("failed to look up credential: %w", err)
	}
	if subtle.ConstantTimeCompare([]byte(cred.PasswordHash), []byte(s.hash(currentPassword))) != 1 {
		return ErrIncorrectPassword
	}

	cred.PasswordHash = s.hash(newPassword)
	if err := s.db.Save(&cred).Error; err != nil {
		return fmt.Errorf("failed to update credential: %w", err)
	}
	return nil
}

// ResetPassword deletes the stored hash so the next login for the identity
// becomes a first login again. Knowing the exact allow-listed identity is
// the only gate here; see the project design notes.
func (s *Service) ResetPassword(email string) error {
	email = models.NormalizeEmail(email)
	if !s.allowed[email] {
		return ErrNotAllowed
	}
	if err := s.db.Where("email = ?", email).Delete(&models.Credential{}).Error; err != nil {
		return fmt.Errorf("failed to reset credential: %w", err)
	}
	return nil
}

// HasPassword reports whether the identity has completed a first login
func (s *Service) HasPassword(email string) (bool, error) {
	var count int64
	err := s.db.Model(&models.Credential{}).Where("email = ?", models.NormalizeEmail(email)).Count(&count).Error
	return count > 0, err
}

// hash digests the password with the application-wide salt. Deliberately a
// plain digest rather than a password KDF: the threat model is casual
// snooping within a trusted family, not offline attack resistance.
func (s *Service) hash(password string) string {
	sum := sha256.Sum256([]byte(password + s.salt))
	return hex.EncodeToString(sum[:])
}

func validatePassword(password string) error {
	if len(password) < models.MinPasswordLength || len(password) > models.MaxPasswordLength {
		return ErrWeakPassword
	}
	return nil
}
