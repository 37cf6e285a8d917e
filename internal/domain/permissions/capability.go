package permissions

import (
	"errors"
	"fmt"
	"strings"
)

type Capability string

const (
	Dashboard       Capability = "dashboard"
	PDV             Capability = "pdv"
	Caixa           Capability = "caixa"
	Produtos        Capability = "produtos"
	Inventario      Capability = "inventario"
	Relatorios      Capability = "relatorios"
	Clientes        Capability = "clientes"
	Fornecedores    Capability = "fornecedores"
	Financeiro      Capability = "financeiro"
	ConfigFiscal    Capability = "config_fiscal"
	HistoricoCaixas Capability = "historico_caixas"
	Configuracoes   Capability = "configuracoes"
	Devolucoes      Capability = "devolucoes"
	ContasPagar     Capability = "contas_pagar"
	ContasReceber   Capability = "contas_receber"
	Orcamentos      Capability = "orcamentos"
)

var ErrUnknownCapability = errors.New("unknown capability")

// All lists every capability in a stable order.
var All = []Capability{
	Dashboard, PDV, Caixa, Produtos, Inventario, Relatorios, Clientes, Fornecedores,
	Financeiro, ConfigFiscal, HistoricoCaixas, Configuracoes, Devolucoes,
	ContasPagar, ContasReceber, Orcamentos,
}

var known = func() map[Capability]struct{} {
	m := make(map[Capability]struct{}, len(All))
	for _, c := range All {
		m[c] = struct{}{}
	}
	return m
}()

func (c Capability) Valid() bool {
	_, ok := known[c]
	return ok
}

// Parse maps a route/config name to a Capability.
func Parse(name string) (Capability, error) {
	c := Capability(strings.ToLower(strings.TrimSpace(name)))
	if !c.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownCapability, name)
	}
	return c, nil
}
