package hintlet

import (
	"context"

	"github.com/hintscan/hintscan/internal/model"
)

// Rule defines the interface all hintlet rules implement.
// Each rule focuses on one class of performance problem.
//
// Design decision: We use an interface rather than a bare callback
// because:
//  1. It allows rules to carry configuration and accumulated state
//  2. It provides a Name() method for logging and reporting
//  3. Concerns() lets the engine skip records a rule never looks at
type Rule interface {
	// Name returns the rule's identifier, used in hints and reports.
	Name() string

	// Concerns returns the record types the rule wants to see.
	// An empty slice means the rule receives every record.
	Concerns() []model.EventType

	// OnRecord inspects a single record and emits hints through the
	// emitter. Errors are logged by the engine and do not stop
	// dispatch; a rule that cannot process one record should still
	// see the next one.
	OnRecord(ctx context.Context, record *model.Record, emitter *Emitter) error
}

// Registry holds the registered rules.
//
// The list is append-only for the life of the process: there is no
// removal, no replacement, and deliberately no uniqueness check on
// names. Registering two rules with the same name keeps both, in
// registration order.
type Registry struct {
	rules []Rule
}

// NewRegistry creates an empty rule registry.
func NewRegistry() *Registry {
	return &Registry{rules: make([]Rule, 0)}
}

// Register appends a rule to the registry.
// There is no error path: duplicates are allowed and nil checks are
// the caller's responsibility.
func (r *Registry) Register(rule Rule) {
	r.rules = append(r.rules, rule)
}

// Rules returns the registered rules in registration order.
// The returned slice is the registry's backing store; callers must
// not modify it.
func (r *Registry) Rules() []Rule {
	return r.rules
}

// Len returns the number of registered rules.
func (r *Registry) Len() int {
	return len(r.rules)
}

// Names returns the rule names in registration order, including
// duplicates.
func (r *Registry) Names() []string {
	names := make([]string, len(r.rules))
	for i, rule := range r.rules {
		names[i] = rule.Name()
	}
	return names
}
