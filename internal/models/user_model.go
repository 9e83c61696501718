package models

import "time"

// Role is the application role of a user.
type Role string

const (
	RoleCitizen   Role = "citizen"
	RoleAdmin     Role = "admin"
	RoleAuthority Role = "authority"
)

// User represents an identity created on first Google sign-in.
type User struct {
	ID        string    `json:"id" firestore:"-" bson:"_id"`
	GoogleID  string    `json:"-" firestore:"googleId" bson:"googleId"` // provider subject, immutable
	Email     string    `json:"email" firestore:"email" bson:"email"`
	Name      string    `json:"name" firestore:"name" bson:"name"`
	Avatar    string    `json:"avatar,omitempty" firestore:"avatar,omitempty" bson:"avatar,omitempty"`
	Role      Role      `json:"role" firestore:"role" bson:"role"`
	CreatedAt time.Time `json:"createdAt" firestore:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" firestore:"updatedAt" bson:"updatedAt"`
}

// IsAdmin reports whether the user may use the admin dashboard.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// UserSummary is the projection of a user joined onto complaint listings.
type UserSummary struct {
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}
