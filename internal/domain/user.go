package domain

import "time"

// User is a shopper known by their Telegram id
type User struct {
	ID         int64     `json:"id" db:"id"`
	TelegramID int64     `json:"telegram_id" db:"telegram_id"`
	Username   string    `json:"username,omitempty" db:"username"`
	FirstName  string    `json:"first_name,omitempty" db:"first_name"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}
