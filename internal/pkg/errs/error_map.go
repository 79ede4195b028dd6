package errs

import "net/http"

// errorMap holds the message template and HTTP status for every error code.
// Entries without a Status default to 200 in NewError.
var errorMap = map[int]CustomError{
	// 1xxx
	ErrInvalidParams:         {Code: ErrInvalidParams, Message: "Invalid request parameters.", Status: http.StatusBadRequest},
	ErrInvalidJSONFormat:     {Code: ErrInvalidJSONFormat, Message: "Unsupported request format.", Status: http.StatusBadRequest},
	ErrExtraContentInBody:    {Code: ErrExtraContentInBody, Message: "Request contains unexpected data.", Status: http.StatusBadRequest},
	ErrFormParseFailed:       {Code: ErrFormParseFailed, Message: "Failed to process submitted form.", Status: http.StatusBadRequest},
	ErrRequestEntityTooLarge: {Code: ErrRequestEntityTooLarge, Message: "Request size is too large.", Status: http.StatusRequestEntityTooLarge},

	// 3xxx
	ErrUnauthorized:           {Code: ErrUnauthorized, Message: "Please sign in to continue.", Status: http.StatusUnauthorized},
	ErrInvalidCredentials:     {Code: ErrInvalidCredentials, Message: "Invalid username or password.", Status: http.StatusUnauthorized},
	ErrUsernameTaken:          {Code: ErrUsernameTaken, Message: "Username already exists.", Status: http.StatusConflict},
	ErrEmailTaken:             {Code: ErrEmailTaken, Message: "Email already registered.", Status: http.StatusConflict},
	ErrRegistrationIncomplete: {Code: ErrRegistrationIncomplete, Message: "Username, email and password are required.", Status: http.StatusBadRequest},
	ErrPasswordTooLong:        {Code: ErrPasswordTooLong, Message: "Password is too long (at most 72 bytes).", Status: http.StatusBadRequest},

	// 4xxx
	ErrMessageRequired:  {Code: ErrMessageRequired, Message: "No message provided", Status: http.StatusBadRequest},
	ErrCompletionFailed: {Code: ErrCompletionFailed, Message: "%s", Status: http.StatusInternalServerError},

	// 5xxx
	ErrUnknown: {Code: ErrUnknown, Message: "Something went wrong. Please try again.", Status: http.StatusInternalServerError},
}
