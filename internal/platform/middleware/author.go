// Copyright (c) 2026 OSG-HTC. All rights reserved.
// Author: OSG-HTC Topology team

package middleware

import (
	"net/http"
	"strings"

	"github.com/osg-htc/institutions/internal/platform/apperr"
	"github.com/osg-htc/institutions/internal/platform/ctxutil"
	"github.com/osg-htc/institutions/internal/platform/respond"
)

// Author copies the authenticated subject forwarded by the OIDC proxy into the
// request context.
//
// # Trust Model
//
// The API sits behind a proxy that strips client-supplied claim headers and
// sets its own. This middleware does no verification; it only carries the
// opaque subject to the audit fields. Requests without the header proceed
// anonymously.
func Author(header string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			subject := strings.TrimSpace(request.Header.Get(header))
			if subject == "" {
				next.ServeHTTP(writer, request)
				return
			}

			ctx := ctxutil.WithAuthor(request.Context(), subject)
			next.ServeHTTP(writer, request.WithContext(ctx))
		})
	}
}

// RequireAuthor blocks requests that carry no author subject.
//
// # Usage
//
// Must be registered in the router AFTER [Author]. Mount it on write routes only;
// the catalog is readable anonymously.
func RequireAuthor(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		if ctxutil.GetAuthor(request.Context()) == "" {
			respond.Error(writer, request, apperr.Unauthorized("Authentication required"))
			return
		}
		next.ServeHTTP(writer, request)
	})
}
