/*
Package resp provides helpers for writing JSON responses.

Successful chat replies are written as their bare payload; failures use a small
{"error": ..., "code": ...} body built from an errs.CustomError.
*/
package resp

import (
	"encoding/json"
	"net/http"

	"groundchat/internal/pkg/errs"
	"groundchat/internal/pkg/logx"
)

// ErrorBody is the JSON body written for every failed API request.
type ErrorBody struct {
	// Error is the client-facing message.
	Error string `json:"error"`

	// Code is the business error code (see the errs package).
	Code int `json:"code"`
}

// RespondJSON sets the JSON headers and writes payload with the given status.
func RespondJSON(w http.ResponseWriter, r *http.Request, httpStatus int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Content-Type-Options", "nosniff")

	body, err := json.Marshal(payload)
	if err != nil {
		logx.Error(err, "Error encoding JSON response", "http_status", httpStatus)
		http.Error(w, "Error encoding JSON response", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(httpStatus)
	_, _ = w.Write(body)
}

// RespondSuccess writes data with HTTP 200.
func RespondSuccess(w http.ResponseWriter, r *http.Request, data any) {
	RespondJSON(w, r, http.StatusOK, data)
}

// RespondError writes customErr as an ErrorBody using its HTTP status.
func RespondError(w http.ResponseWriter, r *http.Request, customErr *errs.CustomError) {
	if customErr == nil {
		customErr = errs.NewError(errs.ErrUnknown)
	}

	RespondJSON(w, r, customErr.Status, ErrorBody{
		Error: customErr.Message,
		Code:  customErr.Code,
	})
}
