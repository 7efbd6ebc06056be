package dto

// LoginRequest payload for POST /auth/login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// RefreshRequest payload for POST /auth/refresh.
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// TokenPair is returned by the refresh endpoint.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// LoginResponse is returned by the login endpoint.
type LoginResponse struct {
	User         *UserWire `json:"user"`
	AccessToken  string    `json:"accessToken"`
	RefreshToken string    `json:"refreshToken"`
}

// UserWire is the backend's user shape.
type UserWire struct {
	ID       ID     `json:"id"`
	Username string `json:"username"`
	FullName string `json:"fullName,omitempty"`
	Name     string `json:"name,omitempty"`
	Role     string `json:"role"`
	IsActive *bool  `json:"isActive,omitempty"`
}
