package supervisor

import (
	"errors"

	"github.com/mediadl/launcher/internal/daemon/backend"
)

// ErrRestartBudgetExhausted is recorded when the loop gives up restarting a
// crashing backend.
var ErrRestartBudgetExhausted = errors.New("restart budget exhausted")

// Code maps err to its taxonomy code.
func Code(err error) string {
	if errors.Is(err, ErrRestartBudgetExhausted) {
		return "RestartBudgetExhausted"
	}
	return backend.Code(err)
}

// Message maps err to a short user-facing message.
func Message(err error) string {
	if errors.Is(err, ErrRestartBudgetExhausted) {
		return "The server kept crashing. Auto-restart gave up; start it again manually."
	}
	return backend.Message(err)
}
