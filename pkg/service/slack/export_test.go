package slack

// Export internal functions and types for testing
var (
	// BuildEscalationBlocks is exported for testing
	BuildEscalationBlocks = buildEscalationBlocks

	// EscalationText is exported for testing
	EscalationText = escalationText
)
