package agent

// WebSearchCapability is the name the caller's tool-enable list uses to
// switch the grounding fallback on or off.
const WebSearchCapability = "web_search"

// groundingInstruction replaces the tool-calling behavioral rules for the
// grounded attempt.
const groundingInstruction = "Answer the user's question directly using web search. " +
	"Be factual and cite the sources you relied on."

// webSearchEnabled reports whether the grounding fallback may run. A nil
// enable list means all capabilities are enabled.
func webSearchEnabled(enabledTools []string) bool {
	if enabledTools == nil {
		return true
	}
	for _, name := range enabledTools {
		if name == WebSearchCapability {
			return true
		}
	}
	return false
}
