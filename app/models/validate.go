package models

import (
	"errors"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("post_status", func(fl validator.FieldLevel) bool {
		return Status(fl.Field().Int()).Valid()
	})
	return v
}

// Validate checks if the post meets all validation requirements
func (p *Post) Validate() error {
	if err := validate.Struct(p); err != nil {
		return err
	}

	if p.CreatedAt.IsZero() {
		return errors.New("created_at cannot be zero")
	}
	if p.ModifiedAt.Before(p.CreatedAt) {
		return errors.New("modified_at cannot precede created_at")
	}
	if dup := p.duplicateTag(); dup != nil {
		return errors.New("duplicate tag " + dup.Name)
	}

	return nil
}

// Validate checks if the comment meets all validation requirements
func (c *Comment) Validate() error {
	if err := validate.Struct(c); err != nil {
		return err
	}

	if c.CreatedAt.IsZero() {
		return errors.New("created_at cannot be zero")
	}

	return nil
}

func (t *Tag) Validate() error {
	return validate.Struct(t)
}

func (c *Category) Validate() error {
	return validate.Struct(c)
}

func (a *Author) Validate() error {
	return validate.Struct(a)
}
