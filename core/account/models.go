package account

import (
	"github.com/littleoaks/backend/core"
)

// Role is the outcome of classifying a principal. It is a derived fact,
// recomputed every session, never stored.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleStaff  Role = "staff"
	RoleParent Role = "parent"
	// RoleNone means "role unknown": the caller must not assume any privilege.
	RoleNone Role = "none"
)

func (r Role) IsStaff() bool { return r == RoleStaff || r == RoleAdmin }
func (r Role) IsAdmin() bool { return r == RoleAdmin }

// Store collections.
const (
	StaffCollection  = "staff"
	ParentCollection = "parents"
)

type (
	// ParentProfile is owned by the parent; childrenIds is maintained by
	// admin tooling.
	ParentProfile struct {
		ID          string   `json:"id"`
		Email       string   `json:"email"`
		ChildrenIDs []string `json:"childrenIds"`
		FCMToken    string   `json:"fcmToken,omitempty"`
	}

	// StaffProfile is only ever created by the provisioning path (the admin
	// CLI or an admin-initiated registration), never auto-created.
	StaffProfile struct {
		ID       string `json:"id"`
		Email    string `json:"email"`
		Role     string `json:"role"` // staff | admin
		FCMToken string `json:"fcmToken,omitempty"`
	}
)

func parentFromDoc(doc core.Document) ParentProfile {
	return ParentProfile{
		ID:          doc.String("id"),
		Email:       doc.String("email"),
		ChildrenIDs: doc.Strings("childrenIds"),
		FCMToken:    doc.String("fcmToken"),
	}
}

func staffFromDoc(doc core.Document) StaffProfile {
	return StaffProfile{
		ID:       doc.String("id"),
		Email:    doc.String("email"),
		Role:     doc.String("role"),
		FCMToken: doc.String("fcmToken"),
	}
}

// Registration is the input to Service.Register.
type Registration struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	Role     Role   `json:"role" validate:"required,regrole"`
}
