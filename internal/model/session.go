package model

// Session is the client's local record of the authenticated identity.
// A nil *Session means nobody is logged in. Sessions are replaced
// wholesale on every change and never mutated in place.
type Session struct {
	// Token is the raw bearer token, exactly as issued by the API.
	Token string

	// ID is the user identifier decoded from the token payload.
	ID string

	// Email is the user address decoded from the token payload.
	Email string
}
