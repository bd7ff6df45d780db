package achievements

import (
	"errors"
	"fmt"

	"github.com/google/cel-go/cel"

	"github.com/Libretto-Pic/the-sage-game/internal/catalog"
)

// Progress is the read-only view of player state that unlock expressions can see.
type Progress struct {
	Level             int
	Day               int
	MissionsCompleted int
	JournalEntries    int
	SoulCoins         int
	PowerPoints       int
	XPMultiplier      float64
	ControlledKazuki  []string
}

// Result holds the updated unlocked set and the achievements unlocked by this evaluation.
type Result struct {
	Unlocked []string
	Newly    []catalog.Achievement
}

// Evaluator compiles every achievement's unlock expression once and evaluates them on demand.
type Evaluator struct {
	defs         []catalog.Achievement
	programs     map[string]cel.Program
	unlockLevels []int64
}

func newEnv() (*cel.Env, error) {
	return cel.NewEnv(
		cel.Variable("level", cel.IntType),
		cel.Variable("day", cel.IntType),
		cel.Variable("missions_completed", cel.IntType),
		cel.Variable("journal_entries", cel.IntType),
		cel.Variable("soul_coins", cel.IntType),
		cel.Variable("power_points", cel.IntType),
		cel.Variable("xp_multiplier", cel.DoubleType),
		cel.Variable("controlled_kazuki", cel.ListType(cel.StringType)),
		cel.Variable("breathing_unlock_levels", cel.ListType(cel.IntType)),
	)
}

func NewEvaluator(cat *catalog.Catalog) (*Evaluator, error) {
	env, err := newEnv()
	if err != nil {
		return nil, fmt.Errorf("achievements: cel env: %w", err)
	}

	e := &Evaluator{
		defs:     cat.Achievements,
		programs: make(map[string]cel.Program, len(cat.Achievements)),
	}
	for _, l := range cat.BreathingUnlockLevels() {
		e.unlockLevels = append(e.unlockLevels, int64(l))
	}

	for _, def := range cat.Achievements {
		ast, iss := env.Compile(def.Unlock)
		if iss.Err() != nil {
			return nil, fmt.Errorf("achievements: compile %s: %w", def.ID, iss.Err())
		}
		if !ast.OutputType().IsExactType(cel.BoolType) {
			return nil, fmt.Errorf("achievements: %s must evaluate to bool, got %s", def.ID, ast.OutputType())
		}
		prog, err := env.Program(ast)
		if err != nil {
			return nil, fmt.Errorf("achievements: program %s: %w", def.ID, err)
		}
		e.programs[def.ID] = prog
	}
	return e, nil
}

func (e *Evaluator) activation(p Progress) map[string]any {
	controlled := p.ControlledKazuki
	if controlled == nil {
		controlled = []string{}
	}
	return map[string]any{
		"level":                   int64(p.Level),
		"day":                     int64(p.Day),
		"missions_completed":      int64(p.MissionsCompleted),
		"journal_entries":         int64(p.JournalEntries),
		"soul_coins":              int64(p.SoulCoins),
		"power_points":            int64(p.PowerPoints),
		"xp_multiplier":           p.XPMultiplier,
		"controlled_kazuki":       controlled,
		"breathing_unlock_levels": e.unlockLevels,
	}
}

// Evaluate checks every achievement not yet in unlocked. Previously unlocked ids are
// always kept. Expressions that fail at runtime are skipped and reported in the error;
// the returned Result is usable either way.
func (e *Evaluator) Evaluate(p Progress, unlocked []string) (Result, error) {
	have := make(map[string]bool, len(unlocked))
	out := Result{Unlocked: append([]string(nil), unlocked...)}
	for _, id := range unlocked {
		have[id] = true
	}

	vars := e.activation(p)
	var errs []error
	for _, def := range e.defs {
		if have[def.ID] {
			continue
		}
		val, _, err := e.programs[def.ID].Eval(vars)
		if err != nil {
			errs = append(errs, fmt.Errorf("achievement %s: %w", def.ID, err))
			continue
		}
		if ok, _ := val.Value().(bool); ok {
			out.Unlocked = append(out.Unlocked, def.ID)
			out.Newly = append(out.Newly, def)
			have[def.ID] = true
		}
	}
	return out, errors.Join(errs...)
}

// Definitions returns the achievement list in catalog order.
func (e *Evaluator) Definitions() []catalog.Achievement {
	return e.defs
}
