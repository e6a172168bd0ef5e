// README: Payout profile validation.
package wallet

import (
	"errors"
	"regexp"
	"strings"
)

// ValidationError names the offending field; Msg is shown to the driver as is.
type ValidationError struct {
	Field string
	Msg   string
}

func (e ValidationError) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	return "invalid " + e.Field
}

// IsValidationError reports whether err carries a ValidationError.
func IsValidationError(err error) bool {
	var target ValidationError
	return errors.As(err, &target)
}

var (
	accountNumberRe = regexp.MustCompile(`^\d{9,18}$`)
	ifscRe          = regexp.MustCompile(`^[A-Z]{4}0[A-Z0-9]{6}$`)
	upiRe           = regexp.MustCompile(`^[\w.-]+@[\w.-]+$`)
)

// ValidateBankDetails checks fields in display order and returns the first failure.
func ValidateBankDetails(d BankDetails) error {
	if strings.TrimSpace(d.AccountName) == "" {
		return ValidationError{Field: "accountName", Msg: "Account holder name is required."}
	}
	if strings.TrimSpace(d.BankName) == "" {
		return ValidationError{Field: "bankName", Msg: "Bank name is required."}
	}
	if !accountNumberRe.MatchString(d.AccountNumber) {
		return ValidationError{Field: "accountNumber", Msg: "Invalid bank account number (9-18 digits required)."}
	}
	if !ifscRe.MatchString(d.IFSC) {
		return ValidationError{Field: "ifsc", Msg: "Invalid IFSC format (e.g., HDFC0001234)."}
	}
	if d.UPIID != "" && !upiRe.MatchString(d.UPIID) {
		return ValidationError{Field: "upiId", Msg: "Invalid UPI ID format."}
	}
	return nil
}
