package access

import (
	"log/slog"

	"retail-saas/internal/domain/identity"
	"retail-saas/internal/domain/permissions"
)

// HasCapability checks a capability by name. An unknown name is a
// configuration error and is denied.
func HasCapability(id identity.Identity, row permissions.Set, name string) bool {
	c, err := permissions.Parse(name)
	if err != nil {
		slog.Warn("capability check denied", "capability", name, "error", err)
		return false
	}
	return permissions.For(id.Kind(), row).Has(c)
}
