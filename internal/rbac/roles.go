package rbac

// Role names. Keep these stable; they are issued inside access tokens.
const (
	RoleUser   = "user"
	RoleSeller = "seller"
	RoleAdmin  = "admin"
)

func IsAdmin(role string) bool { return role == RoleAdmin }

func IsKnownRole(role string) bool {
	switch role {
	case RoleUser, RoleSeller, RoleAdmin:
		return true
	default:
		return false
	}
}
