package repository

import (
	"context"

	"retail-saas/internal/domain/accounts"

	"gorm.io/gorm"
)

type accountRepository struct {
	db *gorm.DB
}

func NewAccountRepository(db *gorm.DB) AccountRepository {
	return &accountRepository{db: db}
}

func (r *accountRepository) FindByID(ctx context.Context, id uint) (*accounts.Account, error) {
	var a accounts.Account
	if err := r.db.WithContext(ctx).First(&a, id).Error; err != nil {
		return nil, translate(err)
	}
	return &a, nil
}

func (r *accountRepository) FindByEmail(ctx context.Context, email string) (*accounts.Account, error) {
	var a accounts.Account
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&a).Error; err != nil {
		return nil, translate(err)
	}
	return &a, nil
}

func (r *accountRepository) FindBySubscriptionID(ctx context.Context, subscriptionID string) (*accounts.Account, error) {
	var a accounts.Account
	if err := r.db.WithContext(ctx).Where("subscription_id = ?", subscriptionID).First(&a).Error; err != nil {
		return nil, translate(err)
	}
	return &a, nil
}

func (r *accountRepository) List(ctx context.Context) ([]accounts.Account, error) {
	var list []accounts.Account
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *accountRepository) UpdateBilling(ctx context.Context, id uint, u BillingUpdate) error {
	cols := u.columns()
	if len(cols) == 0 {
		return nil
	}
	res := r.db.WithContext(ctx).Model(&accounts.Account{}).Where("id = ?", id).Updates(cols)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *accountRepository) SetStatus(ctx context.Context, id uint, status string) error {
	return r.UpdateBilling(ctx, id, BillingUpdate{Status: &status})
}
