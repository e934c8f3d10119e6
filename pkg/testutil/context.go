package testutil

import (
	"net/http"

	id "childminder/pkg/domain"
	"childminder/pkg/requestcontext"
)

// WithSession adds user, session and application ids to the request context,
// simulating what the session middleware does for a signed-in applicant.
func WithSession(req *http.Request, userID id.UserID, appID id.ApplicationID) *http.Request {
	ctx := requestcontext.WithUserID(req.Context(), userID)
	ctx = requestcontext.WithSessionID(ctx, id.NewSessionID())
	ctx = requestcontext.WithApplicationID(ctx, appID)
	return req.WithContext(ctx)
}
