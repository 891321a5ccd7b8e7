package domain

import (
	"time"
)

// UserModel is the GORM model for the users table.
type UserModel struct {
	UserID             string `gorm:"column:user_id;type:varchar(36);primaryKey"`
	FullName           string `gorm:"type:varchar(255);not null"`
	AccountNumber      string `gorm:"type:varchar(50);uniqueIndex;not null"`
	EmailAddress       string `gorm:"type:varchar(255);uniqueIndex;not null"`
	RegistrationNumber string `gorm:"type:varchar(50);uniqueIndex;not null"`
}

// TableName specifies the table name for UserModel.
func (UserModel) TableName() string {
	return "users"
}

// AccountLoginModel is the GORM model for the account_logins table.
type AccountLoginModel struct {
	AccountID         string    `gorm:"column:account_id;type:varchar(50);primaryKey"`
	UserName          string    `gorm:"type:varchar(100);not null"`
	Password          string    `gorm:"type:varchar(255);not null"`
	LastLoginDateTime time.Time `gorm:"index;not null"`
	UserID            string    `gorm:"column:user_id;type:varchar(36);uniqueIndex;not null"`
}

// TableName specifies the table name for AccountLoginModel.
func (AccountLoginModel) TableName() string {
	return "account_logins"
}

// ToDomain converts UserModel to a domain User.
func (m *UserModel) ToDomain() *User {
	return &User{
		UserID:             m.UserID,
		FullName:           m.FullName,
		AccountNumber:      m.AccountNumber,
		EmailAddress:       m.EmailAddress,
		RegistrationNumber: m.RegistrationNumber,
	}
}

// UserToModel converts a domain User to UserModel.
func UserToModel(u *User) *UserModel {
	return &UserModel{
		UserID:             u.UserID,
		FullName:           u.FullName,
		AccountNumber:      u.AccountNumber,
		EmailAddress:       u.EmailAddress,
		RegistrationNumber: u.RegistrationNumber,
	}
}

// ToDomain converts AccountLoginModel to a domain AccountLogin.
func (m *AccountLoginModel) ToDomain() *AccountLogin {
	return &AccountLogin{
		AccountID:         m.AccountID,
		UserName:          m.UserName,
		Password:          m.Password,
		LastLoginDateTime: m.LastLoginDateTime,
		UserID:            m.UserID,
	}
}

// LoginToModel converts a domain AccountLogin to AccountLoginModel.
func LoginToModel(l *AccountLogin) *AccountLoginModel {
	return &AccountLoginModel{
		AccountID:         l.AccountID,
		UserName:          l.UserName,
		Password:          l.Password,
		LastLoginDateTime: l.LastLoginDateTime,
		UserID:            l.UserID,
	}
}
