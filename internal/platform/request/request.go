// Copyright (c) 2026 OSG-HTC. All rights reserved.
// Author: OSG-HTC Topology team

/*
Package requestutil provides utilities for extracting data from HTTP requests.

It abstracts away the underlying router's parameter extraction and common
body decoding patterns, ensuring consistent error handling and type safety.
*/
package requestutil

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/osg-htc/institutions/internal/platform/ctxutil"
	"github.com/osg-htc/institutions/internal/platform/validate"
)

// maxBodyBytes caps write payloads; an institution document is a few hundred bytes.
const maxBodyBytes = 1 << 20

/*
DecodeJSON reads the request body and decodes it into the target structure.

Unknown fields (such as server-computed metadata echoed back by a client)
are ignored.

Parameters:
  - writer: http.ResponseWriter (used to enforce the body size limit)
  - request: *http.Request
  - target: any (Pointer to the destination struct)

Returns:
  - error: validate.ErrInvalidJSON if decoding fails, otherwise nil
*/
func DecodeJSON(writer http.ResponseWriter, request *http.Request, target any) error {
	body := http.MaxBytesReader(writer, request.Body, maxBodyBytes)
	if err := json.NewDecoder(body).Decode(target); err != nil {
		return validate.ErrInvalidJSON
	}
	return nil
}

/*
Param retrieves a named URL parameter from the request.
*/
func Param(request *http.Request, name string) string {
	return chi.URLParam(request, name)
}

/*
Author returns the audit subject attached by the author middleware, or "" for
anonymous requests.
*/
func Author(request *http.Request) string {
	return ctxutil.GetAuthor(request.Context())
}
