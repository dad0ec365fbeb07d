package handler

import (
	"net/http"

	"github.com/hamza-safwan/mini-ride-booking/internal/domain/types"
)

func errorResponse(w http.ResponseWriter, status int, message any) {
	env := envelope{"error": message}

	// Write the response using the writeJSON() helper. If this happens to return an
	// error then log it, and fall back to sending the client an empty response with a
	// 500 Internal Server Error status code.
	if err := writeJSON(w, status, env, nil); err != nil {
		w.WriteHeader(500)
	}
}

// serviceErrorResponse writes err with its status and stable kind.
// Internal failures never leak their message.
func serviceErrorResponse(w http.ResponseWriter, err error) {
	kind := types.KindOf(err)
	message := err.Error()
	if kind == types.KindInternal {
		message = "the server encountered a problem and could not process your request"
	}

	env := envelope{"error": message, "kind": kind}
	if err := writeJSON(w, GetCode(err), env, nil); err != nil {
		w.WriteHeader(500)
	}
}

// failedValidationResponse returns 422 UnprocessableEntity status.
// The HTTP 422 Unprocessable Content client error response status code indicates
// that the server understood the content type of the request content, and the
// syntax of the request content was correct, but it was unable to process the
// contained instructions.
func failedValidationResponse(w http.ResponseWriter, errors map[string]string) {
	env := envelope{"error": errors, "kind": types.KindValidation}
	if err := writeJSON(w, http.StatusUnprocessableEntity, env, nil); err != nil {
		w.WriteHeader(500)
	}
}

// badRequestResponse returns 400 BadRequest status
// The HTTP 400 Bad Request client error response status code indicates that
// the server would not process the request due to something the server considered
// to be a client error, such as malformed request syntax.
func badRequestResponse(w http.ResponseWriter, message any) {
	errorResponse(w, http.StatusBadRequest, message)
}

// internalErrorResponse returns 500 InternalServerError status
func internalErrorResponse(w http.ResponseWriter, message any) {
	errorResponse(w, http.StatusInternalServerError, message)
}
