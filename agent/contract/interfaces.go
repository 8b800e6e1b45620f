package contract

import (
	"context"

	"github.com/cloudwego/eino/schema"
)

// ToolGateway exposes the tool catalogue to the model and runs tool calls.
// Execute never fails: problems are reported inside the result envelope.
type ToolGateway interface {
	Catalog() []*schema.ToolInfo
	Execute(ctx context.Context, call ToolCall) ToolResult
}

// ConversationLog is the append-only audit trail of a customer's messages.
type ConversationLog interface {
	AppendLogEntry(ctx context.Context, customerID int64, role, text, toolUsed string) (int64, error)
}
