package model

// Profile is the body of GET /users/profile/.
type Profile struct {
	ID          ID       `json:"id"`
	FirstName   string   `json:"first_name"`
	LastName    string   `json:"last_name"`
	Email       string   `json:"email"`
	UserType    string   `json:"user_type"`
	RoleLevel   string   `json:"role_level"`
	Permissions []string `json:"permissions"`
	DoctorID    ID       `json:"doctor_id"`
}
