package ports

import "github.com/ankatech/investor-admin/internal/core/domain"

// InputValidator checks a client input before submission. It returns nil or
// a domain.FieldErrors.
type InputValidator interface {
	ValidateInput(in domain.ClientInput) error
}
