package identity

import (
	"strconv"

	"retail-saas/internal/domain/permissions"
	"retail-saas/internal/domain/plans"
)

// MasterEmail is the single super-admin identity. Compared case-sensitively.
const MasterEmail = "master@retail-saas.com.br"

// AdminSentinel is the stored admin flag value that marks an admin.
const AdminSentinel = "true"

type AccountType string

const (
	TypeOwner    AccountType = "owner"
	TypeEmployee AccountType = "employee"
)

// Identity is the cached identity snapshot the gate is given at mount. For
// employees, Account carries the owning tenant's plan fields.
type Identity struct {
	UserID    uint           `json:"id"`
	Email     string         `json:"email"`
	Type      AccountType    `json:"tipo"`
	AccountID uint           `json:"account_id,omitempty"`
	AdminFlag string         `json:"is_admin"`
	Account   plans.Snapshot `json:"account"`
}

func IsMasterEmail(email string) bool { return email == MasterEmail }

func (i Identity) IsMaster() bool   { return IsMasterEmail(i.Email) }
func (i Identity) IsEmployee() bool { return i.Type == TypeEmployee }
func (i Identity) IsAdmin() bool    { return i.AdminFlag == AdminSentinel }

// Kind is resolved once per identity. The master email wins over account type.
func (i Identity) Kind() permissions.Kind {
	switch {
	case i.IsMaster():
		return permissions.KindMaster
	case i.IsEmployee():
		return permissions.KindEmployee
	default:
		return permissions.KindOwner
	}
}

// TenantID is the id every tenant-scoped read must use: the owning account for
// employees, the user itself for owners.
func (i Identity) TenantID() uint {
	if i.IsEmployee() {
		return i.AccountID
	}
	return i.UserID
}

func (i Identity) Valid() bool {
	if i.UserID == 0 || i.Email == "" {
		return false
	}
	switch i.Type {
	case TypeOwner:
		return true
	case TypeEmployee:
		return i.AccountID != 0
	}
	return false
}

func AdminFlag(isAdmin bool) string {
	return strconv.FormatBool(isAdmin)
}
