package models

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

// UserRole enum
type UserRole string

const (
	RoleCitizen    UserRole = "citizen"
	RoleModerator  UserRole = "moderator"
	RoleAdmin      UserRole = "admin"
	RoleSuperAdmin UserRole = "super_admin"
)

// Staff reports whether the role may moderate issues.
func (r UserRole) Staff() bool {
	return r == RoleModerator || r == RoleAdmin || r == RoleSuperAdmin
}

// Admin reports whether the role has administrative rights.
func (r UserRole) Admin() bool {
	return r == RoleAdmin || r == RoleSuperAdmin
}

// UserStatus enum
type UserStatus string

const (
	UserActive    UserStatus = "active"
	UserSuspended UserStatus = "suspended"
	UserBanned    UserStatus = "banned"
	UserDeleted   UserStatus = "deleted"
)

type User struct {
	ID           string     `bson:"_id,omitempty" json:"id"`
	Email        string     `bson:"email" json:"email"`
	PasswordHash string     `bson:"passwordHash" json:"-"`
	Name         string     `bson:"name" json:"name"`
	Location     string     `bson:"location,omitempty" json:"location,omitempty"`
	Bio          string     `bson:"bio,omitempty" json:"bio,omitempty"`
	Phone        string     `bson:"phone,omitempty" json:"phone,omitempty"`
	Role         UserRole   `bson:"role" json:"role"`
	Status       UserStatus `bson:"status" json:"status"`
	LastLoginAt  *time.Time `bson:"lastLoginAt,omitempty" json:"lastLoginAt,omitempty"`
	LoginCount   int64      `bson:"loginCount" json:"loginCount"`
	CreatedAt    time.Time  `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time  `bson:"updatedAt" json:"updatedAt"`
}

// Active reports whether the user may authenticate.
func (u *User) Active() bool {
	return u.Status == UserActive
}

func (u *User) SetPassword(plain string, cost int) error {
	if cost <= 0 {
		cost = bcrypt.DefaultCost
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hashed)
	return nil
}

func (u *User) ComparePassword(candidate string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(candidate))
	return err == nil
}
