package chat

import "strings"

// BuildPrompt assembles the user prompt from the formatted context and the question.
func BuildPrompt(contextText, question string) string {
	var b strings.Builder
	b.WriteString("Context:\n")
	b.WriteString(contextText)
	b.WriteString("\n\nQuestion: ")
	b.WriteString(question)
	b.WriteString("\n\nAnswer in a few sentences. Refer to sources as [Source N].")
	return b.String()
}
