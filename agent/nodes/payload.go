package orchestratornode

import (
	"encoding/json"
	"strings"

	contractx "github.com/tanpawarit/Chative-Restaurant-Concierge/agent/contract"
	toolx "github.com/tanpawarit/Chative-Restaurant-Concierge/agent/tool"
)

// ParsePayload reads the model's reply as a JSON object. A bare array is
// treated as the options list. Anything else yields nil.
func ParsePayload(text string) map[string]any {
	body := strings.TrimSpace(text)
	if strings.HasPrefix(body, "```") {
		body = strings.TrimPrefix(body, "```json")
		body = strings.TrimPrefix(body, "```")
		body = strings.TrimSuffix(strings.TrimSpace(body), "```")
		body = strings.TrimSpace(body)
	}
	if body == "" {
		return nil
	}

	var decoded any
	if err := json.Unmarshal([]byte(body), &decoded); err != nil {
		return nil
	}
	switch v := decoded.(type) {
	case map[string]any:
		return v
	case []any:
		return map[string]any{"options": v}
	default:
		return nil
	}
}

var reservationFields = []string{
	"reservation",
	"restaurant",
	"reservation_fee",
	"estimated_spend_per_person",
	"estimated_subtotal",
	"estimated_total_with_fee",
}

// ExtractFields lifts the structured values a UI renders out of successful
// tool results. A later result overwrites an earlier one under the same key.
func ExtractFields(results []contractx.ToolResult) map[string]any {
	fields := map[string]any{}
	for _, r := range results {
		if !r.Result.OK() {
			continue
		}
		switch r.Tool {
		case toolx.ToolSearchByArea, toolx.ToolSearchNearby:
			fields["restaurants"] = r.Result["results"]
		case toolx.ToolMakeReservation:
			for _, key := range reservationFields {
				fields[key] = r.Result[key]
			}
		case toolx.ToolListBookings:
			fields["bookings"] = r.Result["bookings"]
		case toolx.ToolListOffers:
			fields["offers"] = r.Result["offers"]
		}
	}
	if len(fields) == 0 {
		return nil
	}
	return fields
}
