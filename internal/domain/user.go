package domain

import "time"

type User struct {
	UserID       string    `json:"id" dynamodbav:"user_id"`
	PersonalID   string    `json:"personal_id" dynamodbav:"personal_id"`
	Name         string    `json:"name" dynamodbav:"name"`
	Email        string    `json:"email" dynamodbav:"email"`
	PasswordHash string    `json:"-" dynamodbav:"password_hash"`
	Address      *string   `json:"address,omitempty" dynamodbav:"address"`
	PhoneNumber  *string   `json:"phone_number,omitempty" dynamodbav:"phone_number"`
	Verified     bool      `json:"verified" dynamodbav:"verified"`
	CreatedAt    time.Time `json:"created" dynamodbav:"created_at"`
	UpdatedAt    time.Time `json:"updated" dynamodbav:"updated_at"`
}

type SignUpRequest struct {
	PersonalID      string  `json:"personal_id"`
	Name            string  `json:"name"`
	Email           string  `json:"email"`
	Password        string  `json:"password"`
	ConfirmPassword string  `json:"confirmPassword"`
	Address         *string `json:"address"`
	PhoneNumber     *string `json:"phone_number"`
}

// UpdateUserRequest carries the mutable profile fields. Identity fields
// (personal_id, email) are immutable once registered; email backs the
// uniqueness guard and the sign-in lookup.
type UpdateUserRequest struct {
	Name        *string `json:"name"`
	Address     *string `json:"address"`
	PhoneNumber *string `json:"phone_number"`
}
