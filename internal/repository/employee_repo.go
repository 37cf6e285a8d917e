package repository

import (
	"context"

	"retail-saas/internal/domain/accounts"
	"retail-saas/internal/domain/permissions"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type employeeRepository struct {
	db *gorm.DB
}

func NewEmployeeRepository(db *gorm.DB) EmployeeRepository {
	return &employeeRepository{db: db}
}

func (r *employeeRepository) FindByID(ctx context.Context, id uint) (*accounts.Employee, error) {
	var e accounts.Employee
	if err := r.db.WithContext(ctx).Preload("Account").First(&e, id).Error; err != nil {
		return nil, translate(err)
	}
	return &e, nil
}

func (r *employeeRepository) FindByEmail(ctx context.Context, email string) (*accounts.Employee, error) {
	var e accounts.Employee
	if err := r.db.WithContext(ctx).Preload("Account").Where("email = ?", email).First(&e).Error; err != nil {
		return nil, translate(err)
	}
	return &e, nil
}

func (r *employeeRepository) SetStatus(ctx context.Context, id uint, status string) error {
	res := r.db.WithContext(ctx).Model(&accounts.Employee{}).Where("id = ?", id).Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

type permissionRepository struct {
	db *gorm.DB
}

func NewPermissionRepository(db *gorm.DB) PermissionRepository {
	return &permissionRepository{db: db}
}

func (r *permissionRepository) Find(ctx context.Context, employeeID uint) (permissions.Set, bool, error) {
	var row permissions.EmployeePermission
	err := r.db.WithContext(ctx).Where("employee_id = ?", employeeID).First(&row).Error
	if err != nil {
		if translate(err) == ErrNotFound {
			return permissions.Set{}, false, nil
		}
		return nil, false, err
	}
	return row.Set(), true, nil
}

// Save upserts the whole row; capabilities missing from set are stored false.
func (r *permissionRepository) Save(ctx context.Context, employeeID uint, set permissions.Set) error {
	row := permissions.EmployeePermission{EmployeeID: employeeID}
	row.Apply(set)
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "employee_id"}},
		UpdateAll: true,
	}).Create(&row).Error
}
