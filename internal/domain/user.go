package domain

import "time"

// User пользователь бота. ID — telegram user id.
type User struct {
	ID        int64     `json:"id" db:"id"`
	Language  string    `json:"language" db:"language"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
