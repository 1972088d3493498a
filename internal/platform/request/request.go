// Copyright (c) 2026 GalleManga. All rights reserved.

/*
Package requestutil provides utilities for extracting data from HTTP requests.

It abstracts away the underlying router's parameter extraction, body decoding
and multipart handling, ensuring consistent error handling and type safety.
*/
package requestutil

import (
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/gallemanga/gallemanga/internal/platform/apperr"
	"github.com/gallemanga/gallemanga/internal/platform/ctxutil"
	"github.com/gallemanga/gallemanga/internal/platform/sec"
	"github.com/gallemanga/gallemanga/internal/platform/validate"
)

// maxJSONBody caps JSON request bodies. File uploads go through [ParseMultipart].
const maxJSONBody = 1 << 20

/*
DecodeJSON reads the request body and decodes it into the target structure.

Parameters:
  - writer: http.ResponseWriter (used to cap the body size)
  - request: *http.Request
  - target: any (Pointer to the destination struct)

Returns:
  - error: validate.ErrInvalidJSON if decoding fails, otherwise nil
*/
func DecodeJSON(writer http.ResponseWriter, request *http.Request, target any) error {
	request.Body = http.MaxBytesReader(writer, request.Body, maxJSONBody)
	if err := json.NewDecoder(request.Body).Decode(target); err != nil {
		return validate.ErrInvalidJSON
	}
	return nil
}

/*
ParseMultipart parses a multipart form, capping the whole body at maxBytes.

Returns:
  - error: 413-style validation error if the body is too large, 400 if malformed
*/
func ParseMultipart(writer http.ResponseWriter, request *http.Request, maxBytes int64) error {

	// Leave headroom for the text fields next to the file
	request.Body = http.MaxBytesReader(writer, request.Body, maxBytes+(1<<20))

	if err := request.ParseMultipartForm(32 << 20); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return apperr.Unprocessable("Uploaded file is too large")
		}
		return apperr.ValidationError("Invalid multipart form")
	}
	return nil
}

/*
FormFile returns the named file part, or nil when the client sent none.
*/
func FormFile(request *http.Request, name string) (multipart.File, *multipart.FileHeader, error) {
	file, header, err := request.FormFile(name)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, apperr.ValidationError("Invalid file field: " + name)
	}
	return file, header, nil
}

/*
FormValue returns a trimmed form value and whether the field was present at all.
*/
func FormValue(request *http.Request, name string) (string, bool) {
	if request.MultipartForm != nil {
		if values, ok := request.MultipartForm.Value[name]; ok && len(values) > 0 {
			return strings.TrimSpace(values[0]), true
		}
	}
	if values, ok := request.PostForm[name]; ok && len(values) > 0 {
		return strings.TrimSpace(values[0]), true
	}
	return "", false
}

/*
Param retrieves a named URL parameter from the request.
*/
func Param(request *http.Request, name string) string {
	return chi.URLParam(request, name)
}

/*
Principal extracts the resolved caller from the request context.
*/
func Principal(request *http.Request) (sec.Principal, bool) {
	return ctxutil.GetPrincipal(request.Context())
}

/*
RequiredPrincipal ensures the request is authenticated and returns the caller.

Returns:
  - sec.Principal: The authenticated caller
  - error: apperr.Unauthorized if the request is anonymous
*/
func RequiredPrincipal(request *http.Request) (sec.Principal, error) {
	principal, ok := ctxutil.GetPrincipal(request.Context())
	if !ok {
		return sec.Principal{}, apperr.Unauthorized("Authentication required")
	}
	return principal, nil
}

/*
RequiredUserID returns the User ID of the currently logged-in user.
*/
func RequiredUserID(request *http.Request) (string, error) {
	principal, err := RequiredPrincipal(request)
	if err != nil {
		return "", err
	}
	return principal.UserID, nil
}

// Drain discards the rest of a body so the connection can be reused.
func Drain(body io.ReadCloser) {
	_, _ = io.Copy(io.Discard, body)
	_ = body.Close()
}
