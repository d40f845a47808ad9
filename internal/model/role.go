package model

import "strings"

type UserType string

const (
	UserTypeDoctor       UserType = "doctor"
	UserTypeNurse        UserType = "nurse"
	UserTypeReceptionist UserType = "receptionist"
	UserTypeAdmin        UserType = "admin"
)

type RoleLevel string

const (
	RoleLevelSenior RoleLevel = "senior"
	RoleLevelMedium RoleLevel = "medium"
	RoleLevelBasic  RoleLevel = "basic"
)

var (
	userTypes  = map[UserType]bool{UserTypeDoctor: true, UserTypeNurse: true, UserTypeReceptionist: true, UserTypeAdmin: true}
	roleLevels = map[RoleLevel]bool{RoleLevelSenior: true, RoleLevelMedium: true, RoleLevelBasic: true}
)

// Role is the (user_type, role_level) pair. The zero Role is the unknown role.
type Role struct {
	UserType  UserType  `json:"user_type"`
	RoleLevel RoleLevel `json:"role_level"`
}

// ParseRole normalizes both parts. ok is false when either part is not a known value,
// in which case the zero Role is returned.
func ParseRole(userType, roleLevel string) (Role, bool) {
	ut := UserType(strings.ToLower(strings.TrimSpace(userType)))
	rl := RoleLevel(strings.ToLower(strings.TrimSpace(roleLevel)))
	if !userTypes[ut] || !roleLevels[rl] {
		return Role{}, false
	}
	return Role{UserType: ut, RoleLevel: rl}, true
}

// ParseRoleKey parses a "type-level" key such as "Doctor-Senior".
func ParseRoleKey(key string) (Role, bool) {
	ut, rl, found := strings.Cut(strings.TrimSpace(key), "-")
	if !found {
		return Role{}, false
	}
	return ParseRole(ut, rl)
}

// Key returns the lookup key "type-level", or "" for the unknown role.
func (r Role) Key() string {
	if r.IsZero() {
		return ""
	}
	return string(r.UserType) + "-" + string(r.RoleLevel)
}

func (r Role) IsZero() bool { return r.UserType == "" || r.RoleLevel == "" }

func (r Role) IsDoctor() bool { return r.UserType == UserTypeDoctor }

func (r Role) String() string {
	if r.IsZero() {
		return "unknown"
	}
	return r.Key()
}
