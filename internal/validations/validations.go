package validations

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	apperrors "github.com/anjerodev/dotenv/pkg/errors"
)

func ProjectName(name string) error {
	return form(validation.Errors{
		"name": validation.Validate(name,
			validation.Required,
			validation.Length(2, 24),
		),
	})
}

func DocumentName(name string) error {
	return form(validation.Errors{
		"name": validation.Validate(name,
			validation.Required,
			validation.Length(1, 64),
		),
	})
}

// Profile validates only the fields present; nil fields are untouched
// and skip their rules.
func Profile(username, website *string) error {
	errs := validation.Errors{}
	if username != nil {
		errs["username"] = validation.Validate(*username,
			validation.Required,
			validation.Length(3, 32),
		)
	}
	if website != nil && *website != "" {
		errs["website"] = validation.Validate(*website, is.URL)
	}
	return form(errs)
}

func Register(email, password, username string) error {
	return form(validation.Errors{
		"email": validation.Validate(email,
			validation.Required,
			is.Email,
		),
		"password": validation.Validate(password,
			validation.Required,
			validation.Length(8, 72),
		),
		"username": validation.Validate(username,
			validation.Required,
			validation.Length(3, 32),
		),
	})
}

// form folds rule failures into a field-keyed validation error the
// handlers can serialize next to the offending inputs.
func form(errs validation.Errors) error {
	filtered := errs.Filter()
	if filtered == nil {
		return nil
	}

	fields := map[string]string{}
	for field, err := range filtered.(validation.Errors) {
		fields[field] = err.Error()
	}

	return apperrors.NewValidationError(fields)
}
