package web

import (
	"fmt"
	"strings"
)

// ValidationError names the offending field; handlers map it to 400.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

const (
	maxUsernameLength = 20
	maxBatchCount     = 1000
)

func validateUsername(field, username string) error {
	username = strings.TrimSpace(username)
	if username == "" {
		return &ValidationError{Field: field, Reason: "required"}
	}
	if len(username) > maxUsernameLength {
		return &ValidationError{Field: field, Reason: fmt.Sprintf("longer than %d characters", maxUsernameLength)}
	}
	return nil
}

func validateCredentials(username, password string) error {
	if err := validateUsername("username", username); err != nil {
		return err
	}
	if strings.TrimSpace(password) == "" {
		return &ValidationError{Field: "password", Reason: "required"}
	}
	return nil
}

func validateBatchRequest(account string, count, maxQueryCount, durationHours int) error {
	if err := validateUsername("account", account); err != nil {
		return err
	}
	if count <= 0 || count > maxBatchCount {
		return &ValidationError{Field: "count", Reason: fmt.Sprintf("must be between 1 and %d", maxBatchCount)}
	}
	if maxQueryCount <= 0 {
		return &ValidationError{Field: "max_query_count", Reason: "must be positive"}
	}
	if durationHours <= 0 {
		return &ValidationError{Field: "duration_hours", Reason: "must be positive"}
	}
	return nil
}

func validatePasswordChange(current, next string) error {
	if current == "" {
		return &ValidationError{Field: "current_password", Reason: "required"}
	}
	if next == "" {
		return &ValidationError{Field: "new_password", Reason: "required"}
	}
	return nil
}
