package models

import "time"

type User struct {
	ID                   int64      `json:"id" db:"id"`
	Username             string     `json:"username" db:"username"`
	Email                string     `json:"email" db:"email"`
	PasswordHash         string     `json:"-" db:"password_hash"`
	Verified             bool       `json:"verified" db:"verified"`
	VerificationToken    *string    `json:"-" db:"verification_token"`
	ResetPasswordToken   *string    `json:"-" db:"reset_password_token"`
	ResetPasswordExpires *time.Time `json:"-" db:"reset_password_expires"`
	IsAdmin              bool       `json:"is_admin" db:"is_admin"`
	CreatedAt            time.Time  `json:"created_at" db:"created_at"`
}
