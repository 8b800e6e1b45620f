package prompt

import (
	"context"
	_ "embed"
	"fmt"
	"strings"
	"time"

	einoprompt "github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"

	contractx "github.com/tanpawarit/Chative-Restaurant-Concierge/agent/contract"
)

//go:embed template/concierge.txt
var conciergeRaw string

// Guest holds the per-session values rendered into the system prompt.
type Guest struct {
	Name  string
	Phone string
}

// Settings holds the business values rendered into the system prompt.
type Settings struct {
	Brand          string
	ReservationFee int
}

// Concierge renders the concierge system prompt for one guest as of now.
func Concierge(ctx context.Context, guest Guest, settings Settings, now time.Time) (string, error) {
	return render(ctx, conciergeRaw, map[string]any{
		"brand":           settings.Brand,
		"reservation_fee": settings.ReservationFee,
		"customer_name":   guest.Name,
		"customer_phone":  guest.Phone,
		"current_date":    now.Format("2006-01-02"),
		"current_day":     now.Weekday().String(),
	})
}

func render(ctx context.Context, raw string, vars map[string]any) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", contractx.ErrPromptMissing
	}

	msgs, err := einoprompt.FromMessages(schema.FString, schema.SystemMessage(raw)).Format(ctx, vars)
	if err != nil {
		return "", fmt.Errorf("format system prompt: %w", err)
	}
	if len(msgs) == 0 || strings.TrimSpace(msgs[0].Content) == "" {
		return "", contractx.ErrPromptMissing
	}
	return msgs[0].Content, nil
}
