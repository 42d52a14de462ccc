package tools

import "fmt"

// Status tags the outcome of a tool invocation.
type Status string

const (
	// StatusCompleted means the tool finished; the message is informational.
	StatusCompleted Status = "completed"
	// StatusNeedsInput means the tool could not finish without an answer from the human.
	StatusNeedsInput Status = "needs_input"
)

// Result is what every tool returns: either Completed or NeedsInput, with a message.
// A NeedsInput message is the exact question shown to the human.
type Result struct {
	Status  Status `json:"status"`
	Message string `json:"message"`
}

func Completed(message string) Result {
	return Result{Status: StatusCompleted, Message: message}
}

func Completedf(format string, args ...interface{}) Result {
	return Completed(fmt.Sprintf(format, args...))
}

func NeedsInput(message string) Result {
	return Result{Status: StatusNeedsInput, Message: message}
}

func NeedsInputf(format string, args ...interface{}) Result {
	return NeedsInput(fmt.Sprintf(format, args...))
}

func (r Result) IsCompleted() bool {
	return r.Status == StatusCompleted
}

func (r Result) IsNeedsInput() bool {
	return r.Status == StatusNeedsInput
}

func (r Result) String() string {
	return fmt.Sprintf("%s: %s", r.Status, r.Message)
}
