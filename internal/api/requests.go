package api

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/Iron-Ham/rebuttal/internal/errors"
)

type positionRequest struct {
	Position string `json:"position" validate:"required,oneof=pro con"`
}

type postRequest struct {
	Content   string `json:"content" validate:"required"`
	WordCount int    `json:"word_count" validate:"gte=1"`
	Technique string `json:"rhetorical_technique,omitempty" validate:"omitempty,oneof=ethos pathos logos"`
}

type challengeRequest struct {
	PostID         string `json:"post_id" validate:"required"`
	ChallengeType  string `json:"challenge_type" validate:"required,oneof=fallacy appeal"`
	ChallengeValue string `json:"challenge_value" validate:"required"`
}

// newValidator returns a validator that reports JSON field names.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validateRequest checks a request body before it is sent.
func (c *Client) validateRequest(req any) error {
	err := c.validate.Struct(req)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return errors.NewValidationError("request rejected before sending: "+fe.Field()+" failed "+fe.Tag()).
			WithField(fe.Field()).
			WithValue(fe.Value()).
			WithCause(err)
	}
	return errors.NewValidationError("request rejected before sending").WithCause(err)
}
