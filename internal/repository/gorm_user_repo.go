package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/riskids/riskids-betest/internal/domain"
)

// GormUserRepository implements UserRepository using GORM.
type GormUserRepository struct {
	db *gorm.DB
}

// NewGormUserRepository creates a new GORM-based user repository.
func NewGormUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

// CreateUser persists the user and its login in a single transaction. The
// user row is written first so the login's foreign key always references a
// committed user.
func (r *GormUserRepository) CreateUser(ctx context.Context, user *domain.User, login *domain.AccountLogin) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(domain.UserToModel(user)).Error; err != nil {
			return err
		}
		return tx.Create(domain.LoginToModel(login)).Error
	})
	if err != nil {
		return r.handleError(err)
	}
	return nil
}

// GetUserByID retrieves a user by its immutable id.
func (r *GormUserRepository) GetUserByID(ctx context.Context, userID string) (*domain.User, error) {
	return r.getUserBy(ctx, "user_id = ?", userID)
}

// GetUserByAccountNumber retrieves a user by account number.
func (r *GormUserRepository) GetUserByAccountNumber(ctx context.Context, accountNumber string) (*domain.User, error) {
	return r.getUserBy(ctx, "account_number = ?", accountNumber)
}

// GetUserByRegistrationNumber retrieves a user by registration number.
func (r *GormUserRepository) GetUserByRegistrationNumber(ctx context.Context, registrationNumber string) (*domain.User, error) {
	return r.getUserBy(ctx, "registration_number = ?", registrationNumber)
}

// GetUserByEmail retrieves a user by email address.
func (r *GormUserRepository) GetUserByEmail(ctx context.Context, emailAddress string) (*domain.User, error) {
	return r.getUserBy(ctx, "email_address = ?", emailAddress)
}

func (r *GormUserRepository) getUserBy(ctx context.Context, query string, value string) (*domain.User, error) {
	var model domain.UserModel
	result := r.db.WithContext(ctx).First(&model, query, value)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, result.Error
	}
	return model.ToDomain(), nil
}

// UpdateUser applies the non-nil patch fields and returns the updated row.
func (r *GormUserRepository) UpdateUser(ctx context.Context, userID string, patch *domain.UpdateUserRequest) (*domain.User, error) {
	updates := map[string]interface{}{}
	if patch.FullName != nil {
		updates["full_name"] = *patch.FullName
	}
	if patch.AccountNumber != nil {
		updates["account_number"] = *patch.AccountNumber
	}
	if patch.EmailAddress != nil {
		updates["email_address"] = *patch.EmailAddress
	}
	if patch.RegistrationNumber != nil {
		updates["registration_number"] = *patch.RegistrationNumber
	}

	if len(updates) > 0 {
		result := r.db.WithContext(ctx).Model(&domain.UserModel{}).
			Where("user_id = ?", userID).
			Updates(updates)
		if result.Error != nil {
			return nil, r.handleError(result.Error)
		}
		if result.RowsAffected == 0 {
			return nil, ErrUserNotFound
		}
	}

	return r.GetUserByID(ctx, userID)
}

// DeleteUser removes the user and its paired login in one transaction and
// returns the deleted snapshot so callers can recover its cache keys.
func (r *GormUserRepository) DeleteUser(ctx context.Context, userID string) (*domain.User, error) {
	var deleted *domain.User
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var model domain.UserModel
		if err := tx.First(&model, "user_id = ?", userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUserNotFound
			}
			return err
		}
		deleted = model.ToDomain()

		if err := tx.Delete(&domain.AccountLoginModel{}, "user_id = ?", userID).Error; err != nil {
			return err
		}
		return tx.Delete(&domain.UserModel{}, "user_id = ?", userID).Error
	})
	if err != nil {
		return nil, err
	}
	return deleted, nil
}

// GetLoginByUserID retrieves the login paired with a user.
func (r *GormUserRepository) GetLoginByUserID(ctx context.Context, userID string) (*domain.AccountLogin, error) {
	return r.getLoginBy(ctx, "user_id = ?", userID)
}

// GetLoginByAccountID retrieves a login by its unique account id.
func (r *GormUserRepository) GetLoginByAccountID(ctx context.Context, accountID string) (*domain.AccountLogin, error) {
	return r.getLoginBy(ctx, "account_id = ?", accountID)
}

func (r *GormUserRepository) getLoginBy(ctx context.Context, query string, value string) (*domain.AccountLogin, error) {
	var model domain.AccountLoginModel
	result := r.db.WithContext(ctx).First(&model, query, value)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrLoginNotFound
		}
		return nil, result.Error
	}
	return model.ToDomain(), nil
}

// TouchLastLogin records login/logout activity for a login.
func (r *GormUserRepository) TouchLastLogin(ctx context.Context, accountID string, t time.Time) error {
	result := r.db.WithContext(ctx).Model(&domain.AccountLoginModel{}).
		Where("account_id = ?", accountID).
		Update("last_login_date_time", t)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrLoginNotFound
	}
	return nil
}

// ListStaleLogins streams logins older than the cutoff joined with their
// users. The underlying cursor is consumed exactly once.
func (r *GormUserRepository) ListStaleLogins(ctx context.Context, before time.Time) ([]domain.InactiveAccount, error) {
	rows, err := r.db.WithContext(ctx).
		Table("account_logins").
		Select("account_logins.account_id, account_logins.user_name, account_logins.last_login_date_time, " +
			"users.user_id, users.full_name, users.account_number, users.email_address, users.registration_number").
		Joins("JOIN users ON users.user_id = account_logins.user_id").
		Where("account_logins.last_login_date_time < ?", before).
		Order("account_logins.last_login_date_time").
		Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accounts []domain.InactiveAccount
	for rows.Next() {
		var a domain.InactiveAccount
		if err := rows.Scan(
			&a.AccountID, &a.UserName, &a.LastLoginDateTime,
			&a.User.UserID, &a.User.FullName, &a.User.AccountNumber,
			&a.User.EmailAddress, &a.User.RegistrationNumber,
		); err != nil {
			return nil, err
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

// handleError converts database-specific errors to domain errors.
func (r *GormUserRepository) handleError(err error) error {
	errStr := err.Error()

	// Unique constraint violations: postgres ("duplicate key"), sqlite
	// ("UNIQUE constraint failed"), mysql ("Duplicate entry").
	if strings.Contains(errStr, "duplicate key") ||
		strings.Contains(errStr, "UNIQUE constraint") ||
		strings.Contains(errStr, "Duplicate entry") {
		switch {
		case strings.Contains(errStr, "account_number"):
			return ErrDuplicateAccountNumber
		case strings.Contains(errStr, "email_address"):
			return ErrDuplicateEmail
		case strings.Contains(errStr, "registration_number"):
			return ErrDuplicateRegistrationNumber
		case strings.Contains(errStr, "account_id"):
			return ErrDuplicateAccountID
		}
	}

	return err
}
