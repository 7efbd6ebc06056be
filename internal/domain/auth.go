package domain

// Session is the client's authenticated state. It is all-or-nothing.
type Session struct {
	User         User
	AccessToken  string
	RefreshToken string
}

// Valid reports whether every part of the session is present.
func (s Session) Valid() bool {
	return s.AccessToken != "" && s.RefreshToken != "" && s.User.ID != ""
}
