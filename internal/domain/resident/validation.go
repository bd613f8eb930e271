package resident

import "time"

// ValidateRegisterInput checks the required fields of a registration request.
func ValidateRegisterInput(req RegisterRequest) error {
	if req.FirstName == "" || req.LastName == "" {
		return ErrInvalidInput
	}
	if req.BirthDate != nil && req.BirthDate.After(time.Now()) {
		return ErrBirthDateInFuture
	}
	return nil
}
