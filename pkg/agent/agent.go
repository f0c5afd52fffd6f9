// Package agent defines the external collaborator contracts the work-log
// core consumes: a Model that turns a message list into a reply, and Tools
// that produce domain values while recording their invocations on the owning
// work log.
package agent

import (
	"context"
	"log/slog"

	"github.com/regulata/researchd/pkg/metrics"
	"github.com/regulata/researchd/pkg/worklog"
)

// Role identifies the author of a chat message.
type Role string

// Message roles.
const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one entry of a model conversation.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Model produces a completion for an ordered message list. Implementations
// may fail on transport errors; the core does not retry on the model's
// behalf — retry policy, if any, belongs to the adapter.
type Model interface {
	Complete(ctx context.Context, messages []Message) (string, error)
}

// Tool produces a domain value from arguments. Implementations do the domain
// work only; invocation logging belongs to CallTool so that every call
// yields exactly one tool-log entry.
type Tool interface {
	Name() string
	Invoke(ctx context.Context, args map[string]any) (ToolValue, error)
}

// CallTool invokes a tool and records exactly one tool-log entry on the
// owning work log, success or failure. Args are logged as passed; callers
// keep large or sensitive payloads out of them.
func CallTool(ctx context.Context, w *worklog.WorkLog, tool Tool, args map[string]any) (ToolValue, error) {
	entry := w.AppendToolLog(worklog.NewToolLogEntry(tool.Name(), args))

	value, err := tool.Invoke(ctx, args)
	if err != nil {
		entry.Result = map[string]any{"error": err.Error()}
		metrics.Default().ToolCall(tool.Name(), "error")
		slog.Warn("Tool call failed",
			"work_log_id", w.ID, "tool", tool.Name(), "error", err)
		return ToolValue{}, err
	}

	entry.Result = value.StoreForm()
	metrics.Default().ToolCall(tool.Name(), "ok")
	return value, nil
}
