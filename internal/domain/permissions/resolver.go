package permissions

// Kind mirrors identity kinds without importing the identity package.
type Kind int

const (
	KindOwner Kind = iota
	KindEmployee
	KindMaster
)

// Resolver answers capability checks for one resolved identity.
type Resolver interface {
	Has(c Capability) bool
	// RequiresSecondaryAuth is true only for the master identity.
	RequiresSecondaryAuth() bool
}

type ownerResolver struct{}

func (ownerResolver) Has(c Capability) bool      { return c.Valid() }
func (ownerResolver) RequiresSecondaryAuth() bool { return false }

type masterResolver struct{}

func (masterResolver) Has(c Capability) bool      { return c.Valid() }
func (masterResolver) RequiresSecondaryAuth() bool { return true }

type employeeResolver struct{ row Set }

func (r employeeResolver) Has(c Capability) bool    { return r.row.Has(c) }
func (employeeResolver) RequiresSecondaryAuth() bool { return false }

// For selects the resolver variant once per identity. row is only read for
// employees; a nil row means the employee has no stored permissions and every
// check is denied.
func For(kind Kind, row Set) Resolver {
	switch kind {
	case KindMaster:
		return masterResolver{}
	case KindOwner:
		return ownerResolver{}
	default:
		return employeeResolver{row: row}
	}
}
