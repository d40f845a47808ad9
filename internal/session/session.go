package session

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"github.com/jwalitptl/hospital-dashboard/internal/model"
)

var ErrNotFound = errors.New("session not found")

// Session is the explicit per-user context that replaces the browser's
// session storage keys (token, user_type, role_level, permissions, doctor_id).
type Session struct {
	ID          string    `json:"id"`
	Token       string    `json:"token"`
	UserID      model.ID  `json:"user_id"`
	Name        string    `json:"name"`
	UserType    string    `json:"user_type"`
	RoleLevel   string    `json:"role_level"`
	Permissions []string  `json:"permissions"`
	DoctorID    model.ID  `json:"doctor_id"`
	CreatedAt   time.Time `json:"created_at"`
}

// New builds a session for token from the backend profile.
func New(token string, p *model.Profile, now time.Time) *Session {
	s := &Session{
		ID:          KeyFor(token),
		Token:       token,
		UserID:      p.ID,
		Name:        (model.Person{FirstName: p.FirstName, LastName: p.LastName}).FullName(),
		UserType:    p.UserType,
		RoleLevel:   p.RoleLevel,
		Permissions: append([]string(nil), p.Permissions...),
		CreatedAt:   now,
	}
	if role, ok := s.Role(); ok && role.IsDoctor() {
		s.DoctorID = p.DoctorID
		if s.DoctorID.IsZero() {
			s.DoctorID = p.ID
		}
	}
	return s
}

// KeyFor derives the store key from a token so raw tokens never become keys.
func KeyFor(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// Role parses the stored role. ok is false when the stored values are not a known role.
func (s *Session) Role() (model.Role, bool) {
	return model.ParseRole(s.UserType, s.RoleLevel)
}

// AuthHeader is the value of the Authorization header the backend expects.
func (s *Session) AuthHeader() string {
	return "Token " + s.Token
}

// ViewerDoctorID is the doctor whose schedule is shown by default, or "".
func (s *Session) ViewerDoctorID() string {
	if role, ok := s.Role(); ok && role.IsDoctor() {
		return s.DoctorID.String()
	}
	return ""
}

func (s *Session) HasPermission(perm string) bool {
	for _, p := range s.Permissions {
		if p == perm {
			return true
		}
	}
	return false
}
