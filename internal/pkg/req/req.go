/*
Package req provides helper functions for HTTP request parsing and validation.

It decodes JSON bodies, parses URL-encoded forms under a size limit, and validates
bound structs through go-playground/validator tags.
*/
package req

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-playground/validator/v10"

	"groundchat/internal/pkg/errs"
)

const (
	// MaxJSONBody caps the number of bytes read from a JSON request body (1 MB).
	MaxJSONBody int64 = 1 << 20

	// MaxFormBody caps the size of URL-encoded form submissions (64 KB).
	MaxFormBody int64 = 64 << 10
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// DecodeJSON decodes a single JSON value from body into dst.
// Unknown fields are ignored; trailing data after the value is rejected.
func DecodeJSON(body io.Reader, dst any) *errs.CustomError {
	if body == nil {
		return errs.NewError(errs.ErrInvalidJSONFormat)
	}

	decoder := json.NewDecoder(io.LimitReader(body, MaxJSONBody))

	if err := decoder.Decode(dst); err != nil {
		return errs.NewError(errs.ErrInvalidJSONFormat)
	}

	if decoder.More() {
		return errs.NewError(errs.ErrExtraContentInBody)
	}

	return nil
}

// ParseForm parses a URL-encoded form body under MaxFormBody.
func ParseForm(w http.ResponseWriter, r *http.Request) *errs.CustomError {
	r.Body = http.MaxBytesReader(w, r.Body, MaxFormBody)

	if err := r.ParseForm(); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return errs.NewError(errs.ErrRequestEntityTooLarge)
		}
		return errs.NewError(errs.ErrFormParseFailed)
	}

	return nil
}

// Validate runs the struct's `validate` tags.
func Validate(v any) *errs.CustomError {
	if err := validate.Struct(v); err != nil {
		return errs.NewError(errs.ErrInvalidParams)
	}
	return nil
}
