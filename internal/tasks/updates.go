package tasks

import "fmt"

// ProgressUpdate represents a progress event during a linking or sync
// operation.
//
// Used to send real-time updates to the CLI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within the operation
	Total   int    // Total steps in the operation
	Message string // Human-readable message for display
}

// Operation phase enumeration
type Phase int

const (
	ValidateState Phase = iota
	ExchangeCode
	UpgradeToken
	ResolveAccount
	FetchProfile
	SaveAccount
	RefreshToken
	FetchMedia
	PersistMedia
)

func (p Phase) String() string {
	switch p {
	case ValidateState:
		return "validate_state"
	case ExchangeCode:
		return "exchange_code"
	case UpgradeToken:
		return "upgrade_token"
	case ResolveAccount:
		return "resolve_account"
	case FetchProfile:
		return "fetch_profile"
	case SaveAccount:
		return "save_account"
	case RefreshToken:
		return "refresh_token"
	case FetchMedia:
		return "fetch_media"
	case PersistMedia:
		return "persist_media"
	default:
		return "unknown"
	}
}

func phaseUpdate(phase Phase, step, total int, format string, args ...any) ProgressUpdate {
	return ProgressUpdate{
		Phase:   phase,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf(format, args...),
	}
}
