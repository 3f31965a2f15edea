package packets

type SessionResponse struct {
	Token string `json:"token"`
}

type ProfileResponse struct {
	ID               int     `json:"id"`
	OrganizationID   int     `json:"organization_id"`
	OrganizationName string  `json:"organization_name"`
	Email            string  `json:"email"`
	Name             *string `json:"name,omitempty"`
	Role             string  `json:"role"`
	CreatedAt        string  `json:"created_at"`
	UpdatedAt        string  `json:"updated_at"`
}
