package internal

import "time"

// Session represents the one active conversation mapped to a store folder.
// SessionName is a colon-free UTC timestamp so that lexically descending
// order over session folder names equals recency order.
type Session struct {
	SessionID   string `json:"sessionId"`
	SessionName string `json:"sessionName"`
	CurrentStep int    `json:"currentStep"`
}

// Step represents one persisted conversational turn. The filename, not the
// Timestamp field, is the ordering authority; Timestamp is informational.
type Step struct {
	Timestamp    string   `json:"timestamp"`
	StepNumber   int      `json:"step_number"`
	UserInput    string   `json:"user_input"`
	ModelOutput  string   `json:"model_output"`
	ImageInputs  []string `json:"image_inputs"`
	ImageOutputs []string `json:"image_outputs"`
}

// NewStep builds a step for the given sequence number and turn payloads.
// Image lists are empty but non-nil so they serialize as [] on the wire,
// matching the persisted schema.
func NewStep(number int, userInput, modelOutput string) *Step {
	return &Step{
		Timestamp:    time.Now().UTC().Format(time.RFC3339),
		StepNumber:   number,
		UserInput:    userInput,
		ModelOutput:  modelOutput,
		ImageInputs:  []string{},
		ImageOutputs: []string{},
	}
}

// SessionNameFromTime formats t as a session folder name. The format is the
// compatibility contract for session ordering: it must stay lexically
// sortable and free of characters the store reserves.
func SessionNameFromTime(t time.Time) string {
	return t.UTC().Format("2006-01-02T15-04-05")
}
