package service

import (
	"errors"
	"reflect"

	"github.com/go-playground/validator/v10"

	"github.com/ankatech/investor-admin/internal/core/domain"
)

// clientRules carries the validation tags for a client submission. Field
// names in errors are taken from the form tag.
type clientRules struct {
	Name   string `form:"nome" validate:"required,min=10"`
	Email  string `form:"email" validate:"required,email"`
	Status string `form:"status" validate:"required,oneof=ATIVO INATIVO"`
}

// InputValidator checks a ClientInput against the form rules.
type InputValidator struct {
	v *validator.Validate
}

// NewInputValidator returns a validator whose errors are keyed by wire field name.
func NewInputValidator() *InputValidator {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		return f.Tag.Get("form")
	})
	return &InputValidator{v: v}
}

// ValidateInput returns nil or a domain.FieldErrors with one message per
// failing field. Asset ids are not constrained.
func (iv *InputValidator) ValidateInput(in domain.ClientInput) error {
	err := iv.v.Struct(clientRules{
		Name:   in.Name,
		Email:  in.Email,
		Status: string(in.Status),
	})
	if err == nil {
		return nil
	}

	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return err
	}
	fields := make(domain.FieldErrors, len(ve))
	for _, fe := range ve {
		fields.Add(fe.Field(), fieldMessage(fe))
	}
	return fields
}

// fieldMessage converts a single FieldError into the message shown next to the input.
func fieldMessage(fe validator.FieldError) string {
	switch fe.Field() {
	case "nome":
		if fe.Tag() == "required" {
			return "Nome é obrigatório."
		}
		return "Nome deve ter pelo menos 10 caracteres."
	case "email":
		if fe.Tag() == "required" {
			return "Email é obrigatório."
		}
		return "Email inválido."
	case "status":
		return "Status inválido."
	default:
		return fe.Error()
	}
}
