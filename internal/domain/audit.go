package domain

import "time"

// Registration is a write-only record of a sign-up request.
type Registration struct {
	ID           int64
	Role         string
	FullName     string
	Email        string
	PasswordHash string
	Metadata     map[string]any
	CreatedAt    time.Time
}

// LoginAttempt is an audit record of a login request. Credentials are not verified.
type LoginAttempt struct {
	ID         int64
	Role       string
	Successful bool
	Payload    map[string]any
	CreatedAt  time.Time
}

// Article is a news item shown on the landing page.
type Article struct {
	Slug        string
	Title       string
	Summary     string
	Category    string
	PublishedAt time.Time
	SourceURL   string
}
