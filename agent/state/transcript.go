package state

import (
	"github.com/cloudwego/eino/schema"
)

// Transcript is the bounded working set sent to the model: a fixed system
// instruction followed by the most recent conversation entries. The durable
// conversation log lives elsewhere and is never trimmed.
//
// Transcript is not safe for concurrent use; the owning session serialises
// turns.
type Transcript struct {
	system  *schema.Message
	entries []*schema.Message
}

func NewTranscript(systemPrompt string) *Transcript {
	return &Transcript{system: schema.SystemMessage(systemPrompt)}
}

func (t *Transcript) Append(msgs ...*schema.Message) {
	for _, m := range msgs {
		if m != nil {
			t.entries = append(t.entries, m)
		}
	}
}

// Messages returns the system instruction followed by every retained entry.
func (t *Transcript) Messages() []*schema.Message {
	out := make([]*schema.Message, 0, len(t.entries)+1)
	out = append(out, t.system)
	return append(out, t.entries...)
}

// Len counts retained entries, excluding the system instruction.
func (t *Transcript) Len() int {
	return len(t.entries)
}

func (t *Transcript) SystemPrompt() string {
	return t.system.Content
}

// Trim keeps the newest entries up to 2×maxTurns user and assistant replies.
// Tool-call requests and tool results do not count and are kept or dropped
// together with the reply that follows them. maxTurns <= 0 disables trimming.
func (t *Transcript) Trim(maxTurns int) {
	if maxTurns <= 0 {
		return
	}
	quota := 2 * maxTurns

	counted := 0
	start := len(t.entries)
	for start > 0 && counted < quota {
		start--
		if countsTowardQuota(t.entries[start]) {
			counted++
		}
	}
	if start == 0 {
		return
	}

	kept := make([]*schema.Message, len(t.entries)-start)
	copy(kept, t.entries[start:])
	t.entries = kept
}

// Reset drops every entry but the system instruction.
func (t *Transcript) Reset() {
	t.entries = nil
}

func countsTowardQuota(m *schema.Message) bool {
	switch m.Role {
	case schema.User:
		return true
	case schema.Assistant:
		return len(m.ToolCalls) == 0
	default:
		return false
	}
}
