package http

const (
	CampaignIDParam = "campaignId"
	UserIDParam     = "userId"
)

// UserIDContextKey carries the authenticated user id set by the auth middleware.
type contextKey string

const UserIDContextKey contextKey = "auth_user_id"
