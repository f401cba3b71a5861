package errors

import (
	"errors"
	"net/http"
)

var (
	// ErrUnauthenticated is returned when no credential accompanies the request.
	ErrUnauthenticated = errors.New("not authenticated")
	// ErrInvalidToken is returned when a token fails signature or expiry checks.
	ErrInvalidToken = errors.New("invalid token")
	// ErrInvalidLogin is returned for every login failure: unknown account,
	// disabled account, unaccepted merchant or wrong password. One message for
	// all of them so responses do not reveal which accounts exist.
	ErrInvalidLogin = errors.New("the account or password is not correct, or the account is not activated")
	// ErrAccountNotActivated is returned when a principal with accountEnabled=false
	// presents a session token.
	ErrAccountNotActivated = errors.New("your account is not activated, activate it to use the application")
	// ErrMerchantNotAccepted is returned when an activated merchant has not yet
	// been accepted by an admin.
	ErrMerchantNotAccepted = errors.New("your merchant account has not been accepted yet")
	// ErrAlreadyActivated is returned when an activation token is presented for
	// an account that is already enabled.
	ErrAlreadyActivated = errors.New("your account has already been activated")
	// ErrForbidden is returned when the principal's role does not allow the action.
	ErrForbidden = errors.New("you do not have permission to perform this action")
	// ErrPrincipalExists is returned when registration collides with an existing
	// handle or email.
	ErrPrincipalExists = errors.New("account could not be created")
	// ErrPrincipalNotFound is returned when the addressed user or merchant does not exist.
	ErrPrincipalNotFound = errors.New("the requested account does not exist")
	// ErrInvalidCode is returned when the submitted restoration code does not
	// match, and also when the token carries the dummy principal.
	ErrInvalidCode = errors.New("invalid code")
	// ErrRestorationNotFound is returned when the restoration request record is gone.
	ErrRestorationNotFound = errors.New("the password restoration request does not exist, restart the process from the beginning")
	// ErrRestorationUsed is returned when the stored password no longer matches
	// the token's snapshot, meaning the flow already completed once.
	ErrRestorationUsed = errors.New("you have already completed the password change process")
	// ErrTooManyAttempts is returned when the attempt counter passes its bound.
	ErrTooManyAttempts = errors.New("too many attempts")
	// ErrWebpageNotFound is returned when the addressed webpage does not exist.
	ErrWebpageNotFound = errors.New("the requested webpage does not exist")
	// ErrMailDelivery is returned when a must-deliver email (activation) fails.
	ErrMailDelivery = errors.New("could not send the email")
)

// ErrorResponse represents a standardized error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
	Code       string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, message, code string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
		Code:       code,
	}
}

// ToErrorResponse converts an HTTPError to ErrorResponse.
func (e *HTTPError) ToErrorResponse() ErrorResponse {
	return ErrorResponse{
		Error: e.Message,
		Code:  e.Code,
	}
}

// MapErrorToHTTP maps domain errors to HTTP errors. Authorization failures map
// to 401 rather than 403 on purpose: clients of the original API depend on the
// uniform status.
func MapErrorToHTTP(err error) *HTTPError {
	switch {
	case errors.Is(err, ErrUnauthenticated):
		return NewHTTPError(http.StatusUnauthorized, err.Error(), "UNAUTHENTICATED")
	case errors.Is(err, ErrInvalidToken):
		return NewHTTPError(http.StatusUnauthorized, err.Error(), "INVALID_TOKEN")
	case errors.Is(err, ErrInvalidLogin):
		return NewHTTPError(http.StatusUnauthorized, err.Error(), "INVALID_LOGIN")
	case errors.Is(err, ErrAccountNotActivated):
		return NewHTTPError(http.StatusUnauthorized, err.Error(), "ACCOUNT_NOT_ACTIVATED")
	case errors.Is(err, ErrMerchantNotAccepted):
		return NewHTTPError(http.StatusUnauthorized, err.Error(), "MERCHANT_NOT_ACCEPTED")
	case errors.Is(err, ErrAlreadyActivated):
		return NewHTTPError(http.StatusNotFound, err.Error(), "ALREADY_ACTIVATED")
	case errors.Is(err, ErrForbidden):
		return NewHTTPError(http.StatusUnauthorized, err.Error(), "FORBIDDEN")
	case errors.Is(err, ErrPrincipalExists):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "ACCOUNT_EXISTS")
	case errors.Is(err, ErrPrincipalNotFound):
		return NewHTTPError(http.StatusNotFound, err.Error(), "ACCOUNT_NOT_FOUND")
	case errors.Is(err, ErrInvalidCode):
		return NewHTTPError(http.StatusUnauthorized, err.Error(), "INVALID_CODE")
	case errors.Is(err, ErrRestorationNotFound):
		return NewHTTPError(http.StatusNotFound, err.Error(), "RESTORATION_NOT_FOUND")
	case errors.Is(err, ErrRestorationUsed):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "RESTORATION_USED")
	case errors.Is(err, ErrTooManyAttempts):
		return NewHTTPError(http.StatusUnauthorized, err.Error(), "TOO_MANY_ATTEMPTS")
	case errors.Is(err, ErrWebpageNotFound):
		return NewHTTPError(http.StatusNotFound, err.Error(), "WEBPAGE_NOT_FOUND")
	case errors.Is(err, ErrMailDelivery):
		return NewHTTPError(http.StatusInternalServerError, err.Error(), "MAIL_DELIVERY_FAILED")
	default:
		return NewHTTPError(http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR")
	}
}
