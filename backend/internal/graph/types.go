package graph

import "time"

// User is a known Discord user
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// Message is one stored conversation message
type Message struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	Role      string    `json:"role"` // "user" or "agent"
	AuthorID  string    `json:"author_id"`
	Timestamp time.Time `json:"timestamp"`
}

// Memory is one saved fact about a user
type Memory struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	Category  string    `json:"category,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
