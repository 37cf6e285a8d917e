package permissions

import "time"

// EmployeePermission is the stored Permission Set row, one per employee.
type EmployeePermission struct {
	ID         uint `gorm:"primaryKey"`
	EmployeeID uint `gorm:"not null;uniqueIndex:idx_employee_permissions_employee_id"`

	Dashboard       bool `gorm:"not null;default:false"`
	PDV             bool `gorm:"column:pdv;not null;default:false"`
	Caixa           bool `gorm:"not null;default:false"`
	Produtos        bool `gorm:"not null;default:false"`
	Inventario      bool `gorm:"not null;default:false"`
	Relatorios      bool `gorm:"not null;default:false"`
	Clientes        bool `gorm:"not null;default:false"`
	Fornecedores    bool `gorm:"not null;default:false"`
	Financeiro      bool `gorm:"not null;default:false"`
	ConfigFiscal    bool `gorm:"not null;default:false"`
	HistoricoCaixas bool `gorm:"not null;default:false"`
	Configuracoes   bool `gorm:"not null;default:false"`
	Devolucoes      bool `gorm:"not null;default:false"`
	ContasPagar     bool `gorm:"not null;default:false"`
	ContasReceber   bool `gorm:"not null;default:false"`
	Orcamentos      bool `gorm:"not null;default:false"`

	UpdatedAt time.Time
}

func (EmployeePermission) TableName() string { return "employee_permissions" }

func (p *EmployeePermission) fields() map[Capability]*bool {
	return map[Capability]*bool{
		Dashboard:       &p.Dashboard,
		PDV:             &p.PDV,
		Caixa:           &p.Caixa,
		Produtos:        &p.Produtos,
		Inventario:      &p.Inventario,
		Relatorios:      &p.Relatorios,
		Clientes:        &p.Clientes,
		Fornecedores:    &p.Fornecedores,
		Financeiro:      &p.Financeiro,
		ConfigFiscal:    &p.ConfigFiscal,
		HistoricoCaixas: &p.HistoricoCaixas,
		Configuracoes:   &p.Configuracoes,
		Devolucoes:      &p.Devolucoes,
		ContasPagar:     &p.ContasPagar,
		ContasReceber:   &p.ContasReceber,
		Orcamentos:      &p.Orcamentos,
	}
}

// Set converts the row into a capability set.
func (p EmployeePermission) Set() Set {
	s := make(Set, len(All))
	for c, v := range p.fields() {
		s[c] = *v
	}
	return s
}

// Apply overwrites every column from s; capabilities absent from s become false.
func (p *EmployeePermission) Apply(s Set) {
	for c, v := range p.fields() {
		*v = s[c]
	}
}
