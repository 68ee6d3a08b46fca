package validation

import (
	"fmt"
	"regexp"
	"strings"
)

const (
	MaxDisplayNameLength = 64
	MaxProjectNameLength = 120
	MaxRoleLength        = 80
	MaxDescriptionLength = 1000
	MaxUsernameLength    = 32
)

// Telegram username: letters, digits, underscores, 5-32 characters.
var telegramUsernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_]{5,32}$`)

// ValidateDisplayName checks the profile display name.
func ValidateDisplayName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("display name cannot be empty")
	}
	if len(name) > MaxDisplayNameLength {
		return fmt.Errorf("display name cannot exceed %d characters", MaxDisplayNameLength)
	}
	return nil
}

// ValidateProjectName checks the project name. A non-empty project name is
// what marks a profile as complete, so an empty value is rejected here.
func ValidateProjectName(project string) error {
	project = strings.TrimSpace(project)
	if project == "" {
		return fmt.Errorf("project name cannot be empty")
	}
	if len(project) > MaxProjectNameLength {
		return fmt.Errorf("project name cannot exceed %d characters", MaxProjectNameLength)
	}
	return nil
}

// ValidateRole checks the free-form role field.
func ValidateRole(role string) error {
	if len(strings.TrimSpace(role)) > MaxRoleLength {
		return fmt.Errorf("role cannot exceed %d characters", MaxRoleLength)
	}
	return nil
}

// ValidateDescription checks the profile bio.
func ValidateDescription(description string) error {
	if len(strings.TrimSpace(description)) > MaxDescriptionLength {
		return fmt.Errorf("description cannot exceed %d characters", MaxDescriptionLength)
	}
	return nil
}

// ValidateUsername checks a Telegram username. A leading @ is allowed.
func ValidateUsername(username string) error {
	username = strings.TrimSpace(username)
	if username == "" {
		return fmt.Errorf("username cannot be empty")
	}
	username = strings.TrimPrefix(username, "@")
	if !telegramUsernameRegex.MatchString(username) {
		return fmt.Errorf("username must contain only letters, numbers, and underscores, 5-32 characters")
	}
	return nil
}

// ValidatePositiveInt checks that a numeric identifier is positive.
func ValidatePositiveInt(value int64, fieldName string) error {
	if value <= 0 {
		return fmt.Errorf("%s must be positive", fieldName)
	}
	return nil
}
