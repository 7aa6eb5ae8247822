package graph

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// SaveMemory stores a fact about a user and returns the memory id
func (r *Repository) SaveMemory(ctx context.Context, userID, content, category string) (string, error) {
	session := r.writeSession(ctx)
	defer session.Close(ctx)

	memID := uuid.New().String()

	query := `
		MERGE (u:User {id: $userID})
		CREATE (m:Memory {
			id: $memID,
			content: $content,
			category: $category,
			created_at: datetime($now)
		})
		MERGE (u)-[:REMEMBERS]->(m)
	`

	_, err := session.Run(ctx, query, map[string]interface{}{
		"userID":   userID,
		"memID":    memID,
		"content":  content,
		"category": category,
		"now":      time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return "", fmt.Errorf("failed to save memory: %w", err)
	}

	return memID, nil
}

// SearchMemories returns a user's memories matching the query text,
// newest first. Matching is a case-insensitive substring match; an empty
// query returns the most recent memories.
func (r *Repository) SearchMemories(ctx context.Context, userID, query string, limit int) ([]Memory, error) {
	session := r.readSession(ctx)
	defer session.Close(ctx)

	if limit < 1 {
		limit = 10
	}

	cypher := `
		MATCH (u:User {id: $userID})-[:REMEMBERS]->(m:Memory)
		WHERE $query = '' OR toLower(m.content) CONTAINS toLower($query)
		RETURN m.id as id, m.content as content, m.category as category,
		       m.created_at as created_at
		ORDER BY m.created_at DESC
		LIMIT $limit
	`

	result, err := session.Run(ctx, cypher, map[string]interface{}{
		"userID": userID,
		"query":  query,
		"limit":  limit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to search memories: %w", err)
	}

	var memories []Memory
	for result.Next(ctx) {
		record := result.Record()
		memories = append(memories, Memory{
			ID:        getString(record, "id"),
			Content:   getString(record, "content"),
			Category:  getString(record, "category"),
			CreatedAt: getTime(record, "created_at"),
		})
	}
	if err := result.Err(); err != nil {
		return nil, fmt.Errorf("failed to read memory records: %w", err)
	}

	return memories, nil
}
