// Package assistant turns free-text chat into attendance actions through an
// external language-model delegate.
package assistant

import (
	"context"
	"errors"
)

// Function names the delegate may ask the dispatcher to run.
const (
	FuncCheckIn   = "performCheckIn"
	FuncCheckOut  = "performCheckOut"
	FuncGetStatus = "getAttendanceStatus"
)

// ErrUnavailable wraps every delegate failure.
var ErrUnavailable = errors.New("assistant unavailable")

// Role identifies the author of a chat message.
type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// Message is one turn of the conversation.
type Message struct {
	Role Role
	Text string
}

// FunctionCall is a structured intent returned by the delegate.
type FunctionCall struct {
	Name string
	Args map[string]string
}

// Reply is either text, a function call, or both.
type Reply struct {
	Text string
	Call *FunctionCall
}

// Delegate answers a message given the prior conversation.
type Delegate interface {
	Send(ctx context.Context, message string, history []Message) (Reply, error)
}

// SystemInstruction primes remote delegates.
const SystemInstruction = `You are an intelligent assistant for an attendance management system.
Your goal is to help employees check in and out, view their status, and draft leave requests.
You can also answer policy questions.

Key policies:
- Office hours are 9:00 AM to 6:00 PM.
- Geo-fencing is active.
- 3 consecutive absences require HR approval.

Always be concise, professional, and helpful.
Do not use emojis in your responses.
If the user asks to perform an action (check in, check out), use the appropriate function.`
