/*
Package errs provides custom error types and application-level error code constants.

These error codes are used to clearly identify specific business or system errors
both internally within the server and in communication with clients.
*/
package errs

// 1xxx: General Request Handling Errors
const (
	// ErrInvalidParams indicates that request parameter validation failed.
	ErrInvalidParams = 1001

	// ErrUnsupportedMediaType indicates that the request header Content-Type is not supported.
	ErrUnsupportedMediaType = 1002

	// ErrInvalidJSONFormat indicates that the request body JSON format is incorrect (e.g., syntax error).
	ErrInvalidJSONFormat = 1003

	// ErrExtraContentInBody indicates that the request body contained extra content after valid JSON data.
	ErrExtraContentInBody = 1004

	// ErrRequestEntityTooLarge indicates that the request body size exceeded the server limit.
	ErrRequestEntityTooLarge = 1005

	// ErrRateLimitExceeded indicates that the request rate has exceeded the set limit.
	ErrRateLimitExceeded = 1006
)

// 2xxx: Chat Request and Message Business Logic Errors
const (
	// ErrDuplicateRequest indicates a pending chat request already exists for the ordered
	// (sender, receiver) pair.
	ErrDuplicateRequest = 2101

	// ErrRequestNotFound indicates that accept/reject targeted a missing or non-pending chat request.
	ErrRequestNotFound = 2102

	// ErrSelfRequest indicates an attempt to send a chat request to oneself.
	ErrSelfRequest = 2103

	// ErrChatNotAccepted indicates that messaging was attempted without an accepted chat request.
	ErrChatNotAccepted = 2104

	// ErrMessageEmpty indicates that a message carried neither text nor an attachment.
	ErrMessageEmpty = 2201

	// ErrMessageContentTooLong indicates that the message text exceeded the maximum length limit.
	ErrMessageContentTooLong = 2202

	// ErrFileSizeTooLarge indicates that an attachment exceeded the maximum allowed size.
	ErrFileSizeTooLarge = 2203

	// ErrAttachmentInvalid indicates an attachment with an unsupported kind or undecodable content.
	ErrAttachmentInvalid = 2204
)

// 3xxx: User, Session, and Security Errors
const (
	// ErrUnauthorized indicates a missing or invalid identity on a protected endpoint.
	ErrUnauthorized = 3001

	// ErrInvalidCredentials indicates a failed email/password check.
	ErrInvalidCredentials = 3002

	// ErrEmailAlreadyExists indicates that the signup email is already registered.
	ErrEmailAlreadyExists = 3003

	// ErrUserNotFound indicates that the referenced account does not exist.
	ErrUserNotFound = 3004

	// ErrInvalidPassword indicates that the supplied password fails the length policy.
	ErrInvalidPassword = 3005

	// ErrMissingFields indicates that a required signup/login field was empty.
	ErrMissingFields = 3006
)

// 5xxx: Internal System Errors
const (
	// ErrUnknown represents an unclassified, general server internal error.
	ErrUnknown = 5000

	// ErrFileStorageFailed indicates that the media host rejected or failed an upload.
	ErrFileStorageFailed = 5001
)
