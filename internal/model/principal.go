package model

// PrincipalKind discriminates the two authenticable entity kinds. Tokens embed
// it explicitly so nothing ever has to infer the kind from which claims happen
// to be present.
type PrincipalKind string

const (
	KindUser     PrincipalKind = "user"
	KindMerchant PrincipalKind = "merchant"
)

// Roles, most privileged first. Merchant and user share the lowest rank but
// live in disjoint namespaces.
const (
	RoleOwner    = "owner"
	RoleAdmin    = "admin"
	RoleUser     = "user"
	RoleMerchant = "merchant"
)

// RoleRank orders roles numerically; lower is more privileged.
var RoleRank = map[string]int{
	RoleOwner:    0,
	RoleAdmin:    1,
	RoleMerchant: 2,
	RoleUser:     2,
}

// Identity is the store-independent view of a user or merchant consumed by the
// auth core. Accepted is always true for users; merchants need an admin to
// flip it after self-activation.
type Identity struct {
	ID           uint          `json:"id"`
	Kind         PrincipalKind `json:"kind"`
	Handle       string        `json:"handle"`
	Email        string        `json:"email"`
	PasswordHash string        `json:"-"`
	Role         string        `json:"role"`
	Enabled      bool          `json:"account_enabled"`
	Accepted     bool          `json:"account_accepted"`
}
