// utils/valid.go
package utils

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	emailRegex        = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	phoneStripRegex   = regexp.MustCompile(`[^\d+]`)
	categorySpecial   = regexp.MustCompile(`[<>{}\[\]\\^~]`)
	consecutiveSpaces = regexp.MustCompile(`\s{2,}`)
	categoryPathRegex = regexp.MustCompile(`^[a-zA-Z0-9\s\-&]+(/[a-zA-Z0-9\s\-&]+)*$`)
)

// SanitizeEmail sanitizes and validates an email address
func SanitizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if !emailRegex.MatchString(email) {
		return "", errors.New("invalid email format")
	}
	return email, nil
}

// SanitizePhone sanitizes and validates a phone number. Empty is allowed.
func SanitizePhone(phone string) (string, error) {
	if strings.TrimSpace(phone) == "" {
		return "", nil
	}

	phone = phoneStripRegex.ReplaceAllString(phone, "")
	if !strings.HasPrefix(phone, "+") {
		phone = "+" + phone
	}

	if len(phone) < 8 || len(phone) > 15 {
		return "", errors.New("invalid phone number length")
	}
	return phone, nil
}

// ValidateCategoryName checks a category name against the taxonomy rules.
func ValidateCategoryName(name string) error {
	n := utf8.RuneCountInString(name)
	if n < 2 {
		return errors.New("A category name must have more or equal than 2 characters")
	}
	if n > 100 {
		return errors.New("A category name must have less or equal than 100 characters")
	}
	if categorySpecial.MatchString(name) {
		return errors.New("Category name cannot contain special characters")
	}
	if consecutiveSpaces.MatchString(name) {
		return errors.New("Category name cannot contain consecutive spaces")
	}
	if strings.TrimSpace(name) != name {
		return errors.New("Category name cannot have leading or trailing spaces")
	}
	return nil
}

func ValidateCategoryPath(path string) error {
	if !categoryPathRegex.MatchString(path) {
		return errors.New("Invalid category path format")
	}
	return nil
}

func ValidateCategoryLevel(level, max int) error {
	if level > max {
		return fmt.Errorf("Category cannot exceed level %d", max)
	}
	if level < 1 {
		return errors.New("Invalid category level")
	}
	return nil
}

// ParseObjectIDs converts hex strings to ObjectIDs, failing on the first bad one.
func ParseObjectIDs(hexes []string) ([]primitive.ObjectID, error) {
	ids := make([]primitive.ObjectID, 0, len(hexes))
	for _, h := range hexes {
		id, err := primitive.ObjectIDFromHex(h)
		if err != nil {
			return nil, fmt.Errorf("invalid id %q", h)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// NormalizePage clamps page/limit to sane values.
func NormalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	return page, limit
}
