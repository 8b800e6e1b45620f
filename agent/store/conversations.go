package store

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/uptrace/bun"
)

// AppendLogEntry records one user or assistant message. Blank text and any
// other role fail with ErrInvalidArgument.
func (s *Store) AppendLogEntry(ctx context.Context, customerID int64, role, text, toolUsed string) (int64, error) {
	if role != RoleUser && role != RoleAssistant {
		return 0, fmt.Errorf("%w: role %q must be %q or %q", ErrInvalidArgument, role, RoleUser, RoleAssistant)
	}
	if strings.TrimSpace(text) == "" {
		return 0, fmt.Errorf("%w: message cannot be empty", ErrInvalidArgument)
	}

	entry := &LogEntry{
		CustomerID: customerID,
		Role:       role,
		Message:    text,
		CreatedAt:  s.timestamp(),
	}
	if toolUsed != "" {
		entry.ToolUsed = &toolUsed
	}

	if _, err := s.db.NewInsert().Model(entry).Exec(ctx); err != nil {
		return 0, fmt.Errorf("store: insert log entry: %w", err)
	}
	return entry.ID, nil
}

// CustomerConversation returns a customer's log, oldest first.
func (s *Store) CustomerConversation(ctx context.Context, customerID int64) ([]LogEntry, error) {
	entries := make([]LogEntry, 0)
	err := s.db.NewSelect().
		Model(&entries).
		Where("cl.customer_id = ?", customerID).
		OrderExpr("cl.created_at ASC, cl.id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("store: customer conversation: %w", err)
	}
	return entries, nil
}

// ConversationSummaries lists every customer with a logged conversation,
// their message count and latest message, most recent conversation first.
func (s *Store) ConversationSummaries(ctx context.Context) ([]ConversationSummary, error) {
	summaries := make([]ConversationSummary, 0)
	err := s.db.NewSelect().
		TableExpr("customers AS c").
		ColumnExpr("c.id AS customer_id, c.name, c.phone, c.email").
		ColumnExpr("COUNT(cl.id) AS message_count").
		ColumnExpr("MAX(cl.id) AS last_log_id").
		Join("JOIN conversation_logs AS cl ON cl.customer_id = c.id").
		GroupExpr("c.id, c.name, c.phone, c.email").
		Scan(ctx, &summaries)
	if err != nil {
		return nil, fmt.Errorf("store: conversation summaries: %w", err)
	}
	if len(summaries) == 0 {
		return summaries, nil
	}

	ids := make([]int64, 0, len(summaries))
	for _, sum := range summaries {
		ids = append(ids, sum.LastLogID)
	}

	var last []LogEntry
	if err := s.db.NewSelect().Model(&last).Where("cl.id IN (?)", bun.In(ids)).Scan(ctx); err != nil {
		return nil, fmt.Errorf("store: latest log entries: %w", err)
	}
	byID := make(map[int64]LogEntry, len(last))
	for _, e := range last {
		byID[e.ID] = e
	}

	for i := range summaries {
		if e, ok := byID[summaries[i].LastLogID]; ok {
			summaries[i].LastMessage = e.Message
			summaries[i].LastMessageTime = e.CreatedAt
		}
	}

	slices.SortFunc(summaries, func(a, b ConversationSummary) int {
		if c := b.LastMessageTime.Compare(a.LastMessageTime); c != 0 {
			return c
		}
		return cmp.Compare(b.LastLogID, a.LastLogID)
	})
	return summaries, nil
}
