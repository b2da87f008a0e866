// Package primary defines the primary ports (driving adapters) for the application.
// These are the interfaces through which transports drive the workflow engine.
package primary

import "github.com/example/editorial/internal/apperr"

// Result is the structured outcome every boundary operation reports instead
// of surfacing raw errors.
type Result struct {
	OK      bool   `json:"ok"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
	Code    string `json:"code,omitempty"`
	ID      string `json:"id,omitempty"`
}

// Success builds a successful result.
func Success(id, message string) Result {
	return Result{OK: true, ID: id, Message: message}
}

// ResultFromError builds a failed result carrying the taxonomy code. A nil
// error yields a bare success.
func ResultFromError(err error) Result {
	if err == nil {
		return Result{OK: true}
	}
	kind := apperr.KindOf(err)
	msg := apperr.Message(err)
	if kind == apperr.ErrInfrastructure {
		msg = "internal error"
	}
	return Result{OK: false, Error: msg, Code: apperr.Code(kind)}
}
