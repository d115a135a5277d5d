package types

type UserResponse struct {
	ID                 uint   `json:"id"`
	Name               string `json:"name"`
	Email              string `json:"email"`
	Role               string `json:"role"`
	CompanyName        string `json:"company_name,omitempty"`
	VerificationStatus string `json:"verification_status,omitempty"`
}
