// Package llm holds the chat capability boundary: backends that turn a
// system/user prompt pair into raw model text, the repair logic that turns
// that text into a structured payload, and the coverage-retry controller
// that keeps calling until the payload scores every required section.
package llm

import "context"

// ChatClient is the generation capability. Implementations must return the
// raw model text untouched — it may be perfect JSON, prose with an embedded
// JSON fragment, or empty. A non-nil error means the transport itself
// failed, not that the output was malformed.
type ChatClient interface {
	ChatJSON(ctx context.Context, systemMsg, userMsg, model string, maxTokens int) (string, error)
}
