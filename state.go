// File: lixenwraith/reload/state.go
package reload

import (
	"time"
)

// State is the shared runtime state handed to every request-handling task.
// The swappable security components live in hot-swap cells; the job queue
// client and update coordinator are plain handles that are internally
// thread-safe and never replaced. Construct it once at startup and thread it
// through explicitly; there are no package-level singletons here.
type State struct {
	verifier *Cell[TokenVerifier]
	audit    *Cell[*AuditSink]

	// Jobs fans configuration-change notifications out to other subsystems.
	Jobs JobQueue

	// Updates broadcasts applied changes to in-process subscribers.
	Updates *Updates
}

// NewState assembles the runtime state from its initial components.
func NewState(verifier TokenVerifier, sink *AuditSink, jobs JobQueue, updates *Updates) *State {
	return &State{
		verifier: NewCell(verifier),
		audit:    NewCell(sink),
		Jobs:     jobs,
		Updates:  updates,
	}
}

// Verifier returns the currently installed token verifier. The reference stays
// valid for the caller even if a swap happens immediately after.
func (s *State) Verifier() TokenVerifier {
	return s.verifier.Load()
}

// SwapVerifier installs a new verifier and returns the previous one.
func (s *State) SwapVerifier(v TokenVerifier) TokenVerifier {
	return s.verifier.Swap(v)
}

// AuditSink returns the currently installed audit sink.
func (s *State) AuditSink() *AuditSink {
	return s.audit.Load()
}

// SwapAuditSink installs a new audit sink and returns the previous one. The
// caller decides when the old sink is safe to close; in-flight writers that
// already captured it keep using it until they finish.
func (s *State) SwapAuditSink(n *AuditSink) *AuditSink {
	return s.audit.Swap(n)
}

// Audit records a request lifecycle entry through the current sink. Sink
// failures are swallowed: requests never fail because audit logging did.
func (s *State) Audit(method, path string, pathParams, queryParams map[string]string, body any) {
	_ = s.AuditSink().Append(AuditEntry{
		Time:     time.Now(),
		Category: AuditCategoryRequest,
		Message:  method + " " + path,
		Metadata: map[string]any{
			"path":        path,
			"path_params": pathParams,
			"query":       queryParams,
			"body":        body,
		},
	})
}
