/*
Package req provides helper functions for HTTP request parsing and data binding.

It encapsulates the logic for parsing JSON request bodies with strict field checking
and size limits, facilitating subsequent business logic processing.
*/
package req

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"chatty/internal/pkg/errs"
)

const (
	// MaxJSONBodySize defines the maximum allowed size (1 MB) for ordinary JSON request bodies.
	MaxJSONBodySize int64 = 1 << 20 // 1 MB

	// MaxUploadBodySize defines the maximum allowed size (12 MB) for JSON bodies that may
	// carry a base64-encoded attachment. Base64 inflates the raw 5 MB attachment cap by
	// roughly 4/3, plus headroom for text fields.
	MaxUploadBodySize int64 = 12 << 20 // 12 MB
)

// BindJSON binds the JSON data from the HTTP request body to the destination struct dst.
// The body is capped at MaxJSONBodySize.
func BindJSON(w http.ResponseWriter, r *http.Request, dst any) *errs.CustomError {
	return bindJSON(w, r, dst, MaxJSONBodySize)
}

// BindUploadJSON behaves like BindJSON but allows bodies up to MaxUploadBodySize,
// for endpoints accepting inline base64 file content.
func BindUploadJSON(w http.ResponseWriter, r *http.Request, dst any) *errs.CustomError {
	return bindJSON(w, r, dst, MaxUploadBodySize)
}

func bindJSON(w http.ResponseWriter, r *http.Request, dst any, maxBytes int64) *errs.CustomError {
	contentType := r.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "application/json") {
		return errs.NewError(errs.ErrUnsupportedMediaType)
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(dst); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			return errs.NewError(errs.ErrRequestEntityTooLarge)
		}

		return errs.NewError(errs.ErrInvalidJSONFormat)
	}

	if decoder.More() {
		return errs.NewError(errs.ErrExtraContentInBody)
	}

	return nil
}
