package validation

import (
	"fmt"

	dErrors "sftgate/pkg/domain-errors"
)

// Request field limits for the admin registry API.
const (
	// MaxCompanyNameLength is the maximum length of a partner company name.
	MaxCompanyNameLength = 200

	// MaxEmailLength is the maximum length of a contact email address.
	MaxEmailLength = 255
)

// CheckStringLength validates that a string does not exceed the maximum length.
func CheckStringLength(fieldName, value string, max int) error {
	if len(value) > max {
		return dErrors.New(dErrors.CodeValidation, fmt.Sprintf("%s exceeds max length of %d", fieldName, max))
	}
	return nil
}
