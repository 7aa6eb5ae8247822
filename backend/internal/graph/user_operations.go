package graph

import (
	"context"
	"fmt"
	"time"
)

// GetOrCreateUser ensures a user node exists and returns it
func (r *Repository) GetOrCreateUser(ctx context.Context, userID, username string) (*User, error) {
	session := r.writeSession(ctx)
	defer session.Close(ctx)

	query := `
		MERGE (u:User {id: $userID})
		ON CREATE SET u.username = $username, u.created_at = datetime($now)
		ON MATCH SET u.username = $username
		RETURN u.id as id, u.username as username
	`

	result, err := session.Run(ctx, query, map[string]interface{}{
		"userID":   userID,
		"username": username,
		"now":      time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get or create user: %w", err)
	}

	if !result.Next(ctx) {
		if err := result.Err(); err != nil {
			return nil, fmt.Errorf("failed to fetch record: %w", err)
		}
		return nil, fmt.Errorf("no record returned for user %s", userID)
	}

	record := result.Record()
	return &User{
		ID:       getString(record, "id"),
		Username: getString(record, "username"),
	}, nil
}
