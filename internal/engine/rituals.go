package engine

import (
	"context"
	"slices"
	"strings"

	"github.com/Libretto-Pic/the-sage-game/internal/catalog"
)

// Due reports whether a ritual spawns a mission on day.
func (r RecurringMission) Due(day int) bool {
	switch r.FrequencyType {
	case FrequencyDaily:
		return true
	case FrequencyEveryDays:
		if r.FrequencyValue <= 0 || day < r.StartDay {
			return false
		}
		return (day-r.StartDay)%r.FrequencyValue == 0
	default:
		return false
	}
}

// admitRituals returns the rituals due on day in declaration order, stopping at the
// first one whose XP would push the total above RitualDailyXPCap.
func admitRituals(rituals []RecurringMission, day int) []RecurringMission {
	var out []RecurringMission
	total := 0
	for _, r := range rituals {
		if !r.Due(day) {
			continue
		}
		if total+r.XP > RitualDailyXPCap {
			break
		}
		total += r.XP
		out = append(out, r)
	}
	return out
}

type RitualInput struct {
	Title          string
	Description    string
	Category       catalog.Category
	FrequencyType  FrequencyType
	FrequencyValue int
	XP             int
}

func (in RitualInput) validate() (RitualInput, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	if in.Title == "" {
		return in, invalid("add ritual", nil, "title is required")
	}
	if !in.Category.IsValid() {
		return in, invalid("add ritual", nil, "invalid category %q", in.Category)
	}
	switch in.FrequencyType {
	case FrequencyDaily:
		in.FrequencyValue = 1
	case FrequencyEveryDays:
		if in.FrequencyValue < 1 {
			return in, invalid("add ritual", nil, "frequency must be at least 1 day")
		}
	default:
		return in, invalid("add ritual", nil, "invalid frequency %q", in.FrequencyType)
	}
	if in.XP == 0 {
		in.XP = DefaultRitualXP
	}
	if in.XP < 1 || in.XP > MaxRitualXP {
		return in, invalid("add ritual", nil, "xp must be between 1 and %d", MaxRitualXP)
	}
	if in.Description == "" {
		in.Description = in.Title
	}
	return in, nil
}

type RitualResult struct {
	Ritual  RecurringMission
	SaveErr error
}

// AddRecurringMission stores a new ritual anchored at the current day.
func (g *Game) AddRecurringMission(ctx context.Context, in RitualInput) (RitualResult, error) {
	in, err := in.validate()
	if err != nil {
		return RitualResult{}, err
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.sync(ctx); err != nil {
		return RitualResult{}, err
	}

	next := g.state.Clone()
	r := RecurringMission{
		ID:             g.newID(),
		Title:          in.Title,
		Description:    in.Description,
		Category:       in.Category,
		FrequencyType:  in.FrequencyType,
		FrequencyValue: in.FrequencyValue,
		StartDay:       next.Day,
		XP:             in.XP,
	}
	next.RecurringMissions = append(next.RecurringMissions, r)
	g.log.Info("ritual added", "title", r.Title, "every", r.FrequencyValue)
	return RitualResult{Ritual: r, SaveErr: g.commit(ctx, next, nil)}, nil
}

// DeleteRecurringMission removes a ritual. Missions it already spawned stay.
func (g *Game) DeleteRecurringMission(ctx context.Context, id string) (RitualResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.sync(ctx); err != nil {
		return RitualResult{}, err
	}

	idx := slices.IndexFunc(g.state.RecurringMissions, func(r RecurringMission) bool { return r.ID == id })
	if idx < 0 {
		return RitualResult{}, invalid("delete ritual", ErrRitualNotFound, "no ritual with id %q", id)
	}
	next := g.state.Clone()
	r := next.RecurringMissions[idx]
	next.RecurringMissions = slices.Delete(next.RecurringMissions, idx, idx+1)
	return RitualResult{Ritual: r, SaveErr: g.commit(ctx, next, nil)}, nil
}
