package validation

import (
	"errors"
	"sort"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/blog-content-api/internal/apperr"
	"github.com/blog-content-api/internal/models"
)

// ValidationError represents a single rejected field
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Validator checks request bodies before they reach the content store
type Validator struct {
	maxTagLength int
}

// NewValidator creates a new validator instance
func NewValidator() *Validator {
	return &Validator{maxTagLength: 64}
}

// ValidateCreate checks a create request: title and content must be present
// and a supplied publishAt must parse. The display date is free text.
func (v *Validator) ValidateCreate(req *models.CreatePostRequest) error {
	err := validation.ValidateStruct(req,
		validation.Field(&req.Title, validation.By(notBlank("title"))),
		validation.Field(&req.Content, validation.By(notBlank("content"))),
		validation.Field(&req.PublishAt, validation.By(optionalDate)),
		validation.Field(&req.Tags, validation.Each(validation.RuneLength(0, v.maxTagLength))),
	)
	return v.wrap(err)
}

// ValidateUpdate checks a partial update. Absent fields are not checked;
// an empty publishAt is allowed and clears the schedule.
func (v *Validator) ValidateUpdate(req *models.UpdatePostRequest) error {
	err := validation.ValidateStruct(req,
		validation.Field(&req.Title, validation.By(notBlankPtr("title"))),
		validation.Field(&req.Content, validation.By(notBlankPtr("content"))),
		validation.Field(&req.PublishAt, validation.By(optionalDate)),
		validation.Field(&req.Tags, validation.Each(validation.RuneLength(0, v.maxTagLength))),
	)
	return v.wrap(err)
}

// ValidateLogin checks that a candidate secret was supplied
func (v *Validator) ValidateLogin(req *models.LoginRequest) error {
	return v.wrap(validation.ValidateStruct(req,
		validation.Field(&req.Token, validation.Required.Error("token is required")),
	))
}

// Errors flattens an ozzo error map into field errors sorted by field name
func Errors(err error) []ValidationError {
	var fields validation.Errors
	if !errors.As(err, &fields) {
		return nil
	}
	out := make([]ValidationError, 0, len(fields))
	for field, ferr := range fields {
		out = append(out, ValidationError{Field: field, Message: ferr.Error()})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Field < out[j].Field })
	return out
}

// wrap converts ozzo failures into an apperr validation error whose message
// lists each rejected field.
func (v *Validator) wrap(err error) error {
	if err == nil {
		return nil
	}
	fields := Errors(err)
	if len(fields) == 0 {
		return apperr.Internal("validate request", err)
	}
	parts := make([]string, len(fields))
	for i, f := range fields {
		parts[i] = f.Field + ": " + f.Message
	}
	return apperr.Wrap(err, apperr.KindValidation, strings.Join(parts, "; "))
}

func notBlank(name string) validation.RuleFunc {
	return func(value any) error {
		s, _ := value.(string)
		if strings.TrimSpace(s) == "" {
			return errors.New(name + " is required")
		}
		return nil
	}
}

func notBlankPtr(name string) validation.RuleFunc {
	return func(value any) error {
		s, ok := value.(*string)
		if !ok || s == nil {
			return nil
		}
		if strings.TrimSpace(*s) == "" {
			return errors.New(name + " must not be empty")
		}
		return nil
	}
}

// optionalDate accepts an empty value or anything ParseDate understands
func optionalDate(value any) error {
	var s string
	switch v := value.(type) {
	case string:
		s = v
	case *string:
		if v == nil {
			return nil
		}
		s = *v
	}
	if strings.TrimSpace(s) == "" {
		return nil
	}
	if _, ok := models.ParseDate(s); !ok {
		return errors.New("must be a valid date")
	}
	return nil
}
