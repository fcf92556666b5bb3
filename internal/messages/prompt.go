package messages

// Prompt messages.
const (
	PromptRequiresTerminal = "confirmation requires an interactive terminal; pass --yes to skip it"
	PromptAffirmative      = "Yes"
	PromptNegative         = "No"
)
