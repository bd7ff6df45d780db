package engine

import (
	"errors"
	"fmt"
)

var (
	ErrMissionNotFound         = errors.New("mission not found")
	ErrAlreadyCompleted        = errors.New("mission already completed")
	ErrIncompleteMissions      = errors.New("today's missions are not all complete")
	ErrInsufficientSoulCoins   = errors.New("not enough soul coins")
	ErrInsufficientPowerPoints = errors.New("not enough power points")
	ErrDailyLimitReached       = errors.New("daily limit reached")
	ErrGenerationInProgress    = errors.New("mission generation already in progress")
	ErrRitualNotFound          = errors.New("ritual not found")
	ErrUnknownKazuki           = errors.New("unknown kazuki")
	ErrKazukiNotEncountered    = errors.New("kazuki not yet encountered")
	ErrAlreadyControlled       = errors.New("kazuki already controlled")
	ErrUnknownStat             = errors.New("unknown stat")
	ErrUnknownAbility          = errors.New("unknown ability")
	ErrNoActiveTest            = errors.New("no active ability test")
	ErrStateChanged            = errors.New("game changed while missions were generated")

	// ErrCorruptSave marks a saved game that exists but cannot be decoded.
	ErrCorruptSave = errors.New("save is corrupt")
	// ErrStoreUnavailable is returned by mutations while the saved game cannot be read.
	ErrStoreUnavailable = errors.New("saved game is unavailable")
)

// ValidationError is a refused operation. State is never changed when one is returned.
type ValidationError struct {
	Op     string
	Reason string
	Err    error
}

func (e ValidationError) Error() string {
	if e.Reason == "" && e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Reason)
}

func (e ValidationError) Unwrap() error { return e.Err }

func invalid(op string, err error, format string, args ...any) error {
	return ValidationError{Op: op, Reason: fmt.Sprintf(format, args...), Err: err}
}

// GateError indicates a feature is locked behind a required level.
type GateError struct {
	Feature       string
	RequiredLevel int
}

func (e GateError) Error() string {
	if e.RequiredLevel <= 0 {
		return fmt.Sprintf("feature '%s' is locked", e.Feature)
	}
	return fmt.Sprintf("feature '%s' unlocks at level %d", e.Feature, e.RequiredLevel)
}

// SaveError wraps a failed persist. The in-memory state stays authoritative.
type SaveError struct {
	Err error
}

func (e SaveError) Error() string { return "save game: " + e.Err.Error() }
func (e SaveError) Unwrap() error { return e.Err }
