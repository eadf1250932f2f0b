package llm

import "strings"

const contradictionPrompt = `Do these two statements contradict each other?
Statement A: %s
Statement B: %s

Answer only "true" or "false". No explanation.`

// parseVerdict reads a true/false answer, tolerating case, whitespace and a
// trailing period.
func parseVerdict(answer string) bool {
	answer = strings.ToLower(strings.TrimSpace(answer))
	answer = strings.TrimSuffix(answer, ".")
	return answer == "true"
}

// StripCodeFence removes a surrounding markdown code fence, if any.
func StripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
