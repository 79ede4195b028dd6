// Package prompt builds the grounding prompt for a single chat turn.
package prompt

import (
	"fmt"
	"strings"

	"groundchat/internal/app/search"
)

const (
	RoleSystem = "system"
	RoleUser   = "user"
)

// Message is a role-tagged chat message.
type Message struct {
	Role    string
	Content string
}

const systemTemplate = `You are a helpful and knowledgeable AI assistant.

Here is some real-time context from the web related to the user's request:
%s

Instructions:
1. Answer the user's question based on the provided context if relevant.
2. Reply in the SAME LANGUAGE as the user's message.
3. If the context doesn't help, use your general knowledge but admit if you aren't sure about current specific events not in the context.
4. Format your answer in Markdown.
5. Treat the context as describing recent events as of %s.`

// Assembler renders the system prompt. The zero value is usable; AsOf then reads "today".
type Assembler struct {
	// AsOf is the recency marker quoted to the model, usually a year.
	AsOf string
}

// Assemble returns the system prompt and the two messages to send: the system prompt
// followed by userMessage unchanged.
func (a Assembler) Assemble(userMessage string, results []search.Result) (string, []Message) {
	system := fmt.Sprintf(systemTemplate, RenderContext(results), a.asOf())

	return system, []Message{
		{Role: RoleSystem, Content: system},
		{Role: RoleUser, Content: userMessage},
	}
}

// RenderContext formats results as "- <title>: <body>" lines in input order.
func RenderContext(results []search.Result) string {
	lines := make([]string, 0, len(results))
	for _, r := range results {
		lines = append(lines, "- "+r.Title+": "+r.Body)
	}
	return strings.Join(lines, "\n")
}

func (a Assembler) asOf() string {
	if a.AsOf == "" {
		return "today"
	}
	return a.AsOf
}
