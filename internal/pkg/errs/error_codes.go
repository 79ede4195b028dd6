/*
Package errs provides custom error types and application-level error code constants.

These error codes identify specific request, session and pipeline failures both inside
the server and in the JSON error bodies returned to clients.
*/
package errs

// 1xxx: General Request Handling Errors
const (
	// ErrInvalidParams indicates that request parameter validation failed.
	ErrInvalidParams = 1001

	// ErrInvalidJSONFormat indicates that the request body is not valid JSON.
	ErrInvalidJSONFormat = 1003

	// ErrExtraContentInBody indicates that the request body contained data after the JSON value.
	ErrExtraContentInBody = 1004

	// ErrFormParseFailed indicates failure to parse URL-encoded form data.
	ErrFormParseFailed = 1005

	// ErrRequestEntityTooLarge indicates that the request body exceeded the server limit.
	ErrRequestEntityTooLarge = 1006
)

// 3xxx: User, Session, and Security Errors
const (
	// ErrUnauthorized indicates the request carries no live session.
	ErrUnauthorized = 3001

	// ErrInvalidCredentials is returned for every failed login, whatever field was wrong.
	ErrInvalidCredentials = 3002

	// ErrUsernameTaken indicates a registration collided with an existing username.
	ErrUsernameTaken = 3003

	// ErrEmailTaken indicates a registration collided with an existing email.
	ErrEmailTaken = 3004

	// ErrRegistrationIncomplete indicates a registration form with a missing field.
	ErrRegistrationIncomplete = 3005

	// ErrPasswordTooLong indicates a password longer than bcrypt accepts (72 bytes, not characters).
	ErrPasswordTooLong = 3006
)

// 4xxx: Chat Pipeline Errors
const (
	// ErrMessageRequired indicates the chat request had no usable message.
	ErrMessageRequired = 4001

	// ErrCompletionFailed indicates the completion provider failed; the message carries its text.
	ErrCompletionFailed = 4002
)

// 5xxx: Internal System Errors
const (
	// ErrUnknown represents an unclassified, general server internal error.
	ErrUnknown = 5000
)
