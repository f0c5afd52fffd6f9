package worklog

import "time"

// ToolLogEntry records one tool invocation on a work log. Entries are
// append-only: the owning work log keeps them in invocation order with no
// dedup and no size cap. Params should exclude large or sensitive payloads
// such as raw prompts; Result is filled in after the call completes.
type ToolLogEntry struct {
	Timestamp time.Time      `json:"timestamp"`
	Tool      string         `json:"tool"`
	Params    map[string]any `json:"params,omitempty"`
	Result    any            `json:"result,omitempty"`
}

// NewToolLogEntry stamps the entry's timestamp at construction.
func NewToolLogEntry(tool string, params map[string]any) ToolLogEntry {
	return ToolLogEntry{Timestamp: time.Now(), Tool: tool, Params: params}
}
