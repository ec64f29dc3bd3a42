package models

import "time"

// Reading statuses for a user_comics row.
const (
	StatusPlanned   = "planned"
	StatusReading   = "reading"
	StatusCompleted = "completed"
	StatusDropped   = "dropped"
)

// ValidStatus reports whether s is one of the four reading statuses.
func ValidStatus(s string) bool {
	switch s {
	case StatusPlanned, StatusReading, StatusCompleted, StatusDropped:
		return true
	}
	return false
}

// users table
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// profiles table
type Profile struct {
	UserID      string `json:"user_id"`
	DisplayName string `json:"display_name"`
	AvatarURL   string `json:"avatar_url"`
	Bio         string `json:"bio"`
}

// comics table. One row per ComicVine volume; rows are created on first
// reference and never mutated afterwards.
type Comic struct {
	ID           int64     `json:"id"`
	ComicvineID  int64     `json:"comicvine_id"`
	Title        string    `json:"title"`
	Publisher    string    `json:"publisher"`
	StartYear    string    `json:"start_year"`
	IssueCount   int       `json:"issue_count"`
	Description  string    `json:"description"`
	ImageURL     string    `json:"image_url"`
	APIDetailURL string    `json:"api_detail_url"`
	CreatedAt    time.Time `json:"created_at"`
}

// user_comics table. At most one row per (user, comic).
type UserComic struct {
	ID               int64      `json:"id"`
	UserID           string     `json:"user_id"`
	ComicID          int64      `json:"comic_id"`
	Status           string     `json:"status"`
	PersonalRating   *int       `json:"personal_rating"`
	AddedAt          time.Time  `json:"added_date"`
	StartedReadingAt *time.Time `json:"started_reading_date"`
	CompletedAt      *time.Time `json:"completed_date"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// user_issues table. At most one row per (user, comic, issue number).
type UserIssue struct {
	ID          int64      `json:"id"`
	UserID      string     `json:"user_id"`
	ComicID     int64      `json:"comic_id"`
	IssueNumber int        `json:"issue_number"`
	IsRead      bool       `json:"is_read"`
	ReadAt      *time.Time `json:"read_date"`
}

// ProgressUpdate is pushed to the websocket hub whenever a read toggle or
// bulk mark changes a user's progress.
type ProgressUpdate struct {
	UserID      string `json:"user_id"`
	ComicID     int64  `json:"comic_id"`
	IssueNumber int    `json:"issue_number,omitempty"`
	IsRead      bool   `json:"is_read"`
	TotalRead   int    `json:"total_read"`
	Timestamp   int64  `json:"timestamp"`
}
