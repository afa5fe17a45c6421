package testutil

import (
	"net/http"

	id "tradeinvoice/pkg/domain"
	"tradeinvoice/pkg/requestcontext"
)

// WithCaller attaches an authenticated caller the way the auth middleware
// does. A blank identity leaves the request anonymous.
func WithCaller(req *http.Request, caller string) *http.Request {
	identity := id.ParseIdentity(caller)
	if identity.IsNil() {
		return req
	}
	return req.WithContext(requestcontext.WithCaller(req.Context(), identity))
}
