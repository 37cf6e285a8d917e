package permissions

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	c, err := Parse(" PDV ")
	require.NoError(t, err)
	assert.Equal(t, PDV, c)

	_, err = Parse("estoque_magico")
	assert.True(t, errors.Is(err, ErrUnknownCapability))
}

func TestSetDecodesStringAndBoolValues(t *testing.T) {
	var s Set
	require.NoError(t, json.Unmarshal([]byte(`{"produtos":"true","pdv":"false","caixa":true,"relatorios":"yes","bogus":true}`), &s))

	assert.True(t, s.Has(Produtos))
	assert.False(t, s.Has(PDV))
	assert.True(t, s.Has(Caixa))
	assert.False(t, s.Has(Relatorios))
	assert.False(t, s.Has(Capability("bogus")))
	assert.False(t, s.Has(Orcamentos), "missing entries are false")
}

func TestNormalizeListsEveryCapability(t *testing.T) {
	n := Set{Produtos: true, Capability("bogus"): true}.Normalize()
	assert.Len(t, n, len(All))
	assert.True(t, n[Produtos])
	assert.False(t, n[PDV])
	_, ok := n[Capability("bogus")]
	assert.False(t, ok)
}

func TestRowRoundTrip(t *testing.T) {
	var row EmployeePermission
	row.Apply(Set{Produtos: true, ContasReceber: true})

	assert.True(t, row.Produtos)
	assert.True(t, row.ContasReceber)
	assert.False(t, row.PDV)

	s := row.Set()
	assert.True(t, s.Has(Produtos))
	assert.False(t, s.Has(Dashboard))
	assert.Len(t, s, len(All))
}

func TestResolvers(t *testing.T) {
	owner := For(KindOwner, nil)
	master := For(KindMaster, Set{})
	emptyEmployee := For(KindEmployee, nil)
	employee := For(KindEmployee, Set{Produtos: true})

	for _, c := range All {
		assert.True(t, owner.Has(c), c)
		assert.True(t, master.Has(c), c)
		assert.False(t, emptyEmployee.Has(c), c)
	}
	assert.True(t, employee.Has(Produtos))
	assert.False(t, employee.Has(PDV))

	assert.False(t, owner.Has(Capability("nope")), "unknown capability fails closed")
	assert.False(t, master.Has(Capability("nope")))

	assert.True(t, master.RequiresSecondaryAuth())
	assert.False(t, owner.RequiresSecondaryAuth())
	assert.False(t, employee.RequiresSecondaryAuth())
}

func TestFullSet(t *testing.T) {
	f := Full()
	for _, c := range All {
		assert.True(t, f.Has(c))
	}
}
