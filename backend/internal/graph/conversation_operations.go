package graph

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// LogMessage stores a message and links it to its user and conversation
func (r *Repository) LogMessage(ctx context.Context, userID, channelID, content, role string) error {
	session := r.writeSession(ctx)
	defer session.Close(ctx)

	query := `
		MERGE (u:User {id: $userID})
		MERGE (c:Conversation {channel_id: $channelID})
		ON CREATE SET c.id = $convID, c.started_at = datetime($now)

		CREATE (m:Message {
			id: $msgID,
			content: $content,
			role: $role,
			author_id: $userID,
			timestamp: datetime($now)
		})

		MERGE (u)-[:PARTICIPATED_IN]->(c)
		MERGE (c)-[:CONTAINS]->(m)
	`

	_, err := session.Run(ctx, query, map[string]interface{}{
		"userID":    userID,
		"channelID": channelID,
		"convID":    uuid.New().String(),
		"msgID":     uuid.New().String(),
		"content":   content,
		"role":      role,
		"now":       time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return fmt.Errorf("failed to log message: %w", err)
	}

	return nil
}

// GetConversationHistory retrieves recent messages from a channel's
// conversation, oldest first
func (r *Repository) GetConversationHistory(ctx context.Context, channelID string, limit int) ([]Message, error) {
	session := r.readSession(ctx)
	defer session.Close(ctx)

	if limit < 1 {
		limit = 20
	}

	query := `
		MATCH (c:Conversation {channel_id: $channelID})-[:CONTAINS]->(m:Message)
		RETURN m.id as id, m.content as content, m.role as role,
		       m.author_id as author_id, m.timestamp as timestamp
		ORDER BY m.timestamp DESC
		LIMIT $limit
	`

	result, err := session.Run(ctx, query, map[string]interface{}{
		"channelID": channelID,
		"limit":     limit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get conversation history: %w", err)
	}

	var messages []Message
	for result.Next(ctx) {
		record := result.Record()
		messages = append(messages, Message{
			ID:        getString(record, "id"),
			Content:   getString(record, "content"),
			Role:      getString(record, "role"),
			AuthorID:  getString(record, "author_id"),
			Timestamp: getTime(record, "timestamp"),
		})
	}
	if err := result.Err(); err != nil {
		return nil, fmt.Errorf("failed to read history records: %w", err)
	}

	// Reverse to get chronological order
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}

	return messages, nil
}
