package handlers

import "strings"

// processValidationError extracts field names from gin validation errors
func processValidationError(err error) string {
	errStr := err.Error()

	if strings.Contains(errStr, "Error:Field validation for 'Name' failed") {
		if strings.Contains(errStr, "required") {
			return "name is required"
		}
		if strings.Contains(errStr, "max") {
			return "name must be at most 100 characters"
		}
		if strings.Contains(errStr, "min") {
			return "name must be at least 1 character"
		}
		return "name is invalid"
	}
	if strings.Contains(errStr, "Error:Field validation for 'Description' failed") {
		if strings.Contains(errStr, "max") {
			return "description must be at most 500 characters"
		}
		return "description is invalid"
	}
	if strings.Contains(errStr, "Error:Field validation for 'Email' failed") {
		return "email is required"
	}
	if strings.Contains(errStr, "Error:Field validation for 'ConfirmEmail' failed") {
		return "confirm_email is required"
	}
	if strings.Contains(errStr, "Error:Field validation for 'Password' failed") {
		return "password is required"
	}
	if strings.Contains(errStr, "Error:Field validation for 'CurrentPassword' failed") {
		return "current_password is required"
	}
	if strings.Contains(errStr, "Error:Field validation for 'NewPassword' failed") {
		return "new_password is required"
	}
	if strings.Contains(errStr, "Error:Field validation for 'Text' failed") {
		return "text is required"
	}
	if strings.Contains(errStr, "Error:Field validation for 'Kind' failed") {
		return "kind is required"
	}
	if strings.Contains(errStr, "Error:Field validation for 'TargetID' failed") {
		return "target_id is required"
	}

	// Fallback to original error
	return errStr
}
