package domain

// EventKind is the type of a trace event
type EventKind string

const (
	KindInit          EventKind = "init"
	KindPlan          EventKind = "plan"
	KindToolSearch    EventKind = "tool_search"
	KindToolUse       EventKind = "tool_use"
	KindToolResult    EventKind = "tool_result"
	KindPromptSearch  EventKind = "prompt_search"
	KindStepPrepare   EventKind = "step_prepare"
	KindStepExecute   EventKind = "step_execute"
	KindStrategyShift EventKind = "strategy_shift"
	KindError         EventKind = "error"
	KindSummary       EventKind = "summary"
)

// EventKinds lists every known kind in trace order of typical appearance
var EventKinds = []EventKind{
	KindInit,
	KindPlan,
	KindToolSearch,
	KindToolUse,
	KindToolResult,
	KindPromptSearch,
	KindStepPrepare,
	KindStepExecute,
	KindStrategyShift,
	KindError,
	KindSummary,
}

// Known reports whether k is one of the enumerated kinds.
// Unknown kinds are still valid to write and read.
func (k EventKind) Known() bool {
	for _, known := range EventKinds {
		if k == known {
			return true
		}
	}
	return false
}

// Role tags what a phase does, independent of its display name
type Role string

const (
	RoleDiscovery  Role = "discovery"
	RoleIngestion  Role = "ingestion"
	RoleProfiling  Role = "profiling"
	RoleValidation Role = "validation"
	RoleReporting  Role = "reporting"
	RoleGeneral    Role = "general"
)

// ParseRole converts a string to a Role, defaulting to RoleGeneral
func ParseRole(s string) Role {
	switch Role(s) {
	case RoleDiscovery, RoleIngestion, RoleProfiling, RoleValidation, RoleReporting:
		return Role(s)
	default:
		return RoleGeneral
	}
}
