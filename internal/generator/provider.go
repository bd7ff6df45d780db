package generator

import (
	"context"
	"fmt"
	"strings"

	"github.com/Libretto-Pic/the-sage-game/internal/catalog"
)

// Mission is a generated mission template. The engine assigns ids and XP.
type Mission struct {
	Title       string             `json:"title"`
	Description string             `json:"description"`
	Category    catalog.Category   `json:"category"`
	Difficulty  catalog.Difficulty `json:"difficulty"`
}

type BatchRequest struct {
	Level        int                `json:"level"`
	RecentTitles []string           `json:"recentMissionTitles"`
	Categories   []catalog.Category `json:"categories"`
}

type SingleRequest struct {
	Level        int              `json:"level"`
	RecentTitles []string         `json:"recentMissionTitles"`
	Category     catalog.Category `json:"category"`
}

// ThemedRequest asks for a mission built around a boss trial or a stat activation.
type ThemedRequest struct {
	Level    int              `json:"level"`
	Theme    string           `json:"theme"`
	Context  string           `json:"context"`
	Category catalog.Category `json:"category"`
}

type Judgement struct {
	Evaluation string `json:"evaluation"`
	Worthy     bool   `json:"isWorthy"`
}

// Provider supplies mission content and ability tests.
type Provider interface {
	Generate(ctx context.Context, req BatchRequest) ([]Mission, error)
	GenerateSingle(ctx context.Context, req SingleRequest) (Mission, error)
	GenerateThemed(ctx context.Context, req ThemedRequest) (Mission, error)
	AbilityQuestion(ctx context.Context, level int, ability string) (string, error)
	JudgeAnswer(ctx context.Context, ability, question, answer string) (Judgement, error)
}

// DifficultyBand returns the difficulties appropriate for a level:
// low levels skew Easy, high levels skew Hard.
func DifficultyBand(level int) []catalog.Difficulty {
	switch {
	case level <= 45:
		return []catalog.Difficulty{catalog.DifficultyEasy}
	case level <= 70:
		return []catalog.Difficulty{catalog.DifficultyEasy, catalog.DifficultyMedium}
	default:
		return []catalog.Difficulty{catalog.DifficultyMedium, catalog.DifficultyHard}
	}
}

// ValidationError reports a response that does not satisfy the mission schema.
type ValidationError struct {
	Reason string
}

func (e ValidationError) Error() string {
	return "invalid generator response: " + e.Reason
}

func validateMission(m Mission, recent map[string]bool) error {
	if strings.TrimSpace(m.Title) == "" {
		return ValidationError{Reason: "mission title is empty"}
	}
	if strings.TrimSpace(m.Description) == "" {
		return ValidationError{Reason: fmt.Sprintf("mission %q has no description", m.Title)}
	}
	if !m.Category.IsValid() {
		return ValidationError{Reason: fmt.Sprintf("mission %q has invalid category %q", m.Title, m.Category)}
	}
	if !m.Difficulty.IsValid() {
		return ValidationError{Reason: fmt.Sprintf("mission %q has invalid difficulty %q", m.Title, m.Difficulty)}
	}
	if recent[strings.ToLower(strings.TrimSpace(m.Title))] {
		return ValidationError{Reason: fmt.Sprintf("mission %q repeats a recent title", m.Title)}
	}
	return nil
}

func recentSet(titles []string) map[string]bool {
	out := make(map[string]bool, len(titles))
	for _, t := range titles {
		out[strings.ToLower(strings.TrimSpace(t))] = true
	}
	return out
}

// ValidateBatch checks that every requested category is answered by a valid mission
// and returns exactly one mission per category, in request order.
func ValidateBatch(req BatchRequest, got []Mission) ([]Mission, error) {
	recent := recentSet(req.RecentTitles)
	byCategory := map[catalog.Category]Mission{}
	for _, m := range got {
		if err := validateMission(m, recent); err != nil {
			return nil, err
		}
		if _, ok := byCategory[m.Category]; !ok {
			byCategory[m.Category] = m
		}
	}
	out := make([]Mission, 0, len(req.Categories))
	for _, c := range req.Categories {
		m, ok := byCategory[c]
		if !ok {
			return nil, ValidationError{Reason: fmt.Sprintf("no mission for category %s", c)}
		}
		out = append(out, m)
	}
	return out, nil
}

// ValidateSingle checks a single mission against the requested category.
func ValidateSingle(req SingleRequest, got Mission) (Mission, error) {
	if err := validateMission(got, recentSet(req.RecentTitles)); err != nil {
		return Mission{}, err
	}
	if got.Category != req.Category {
		return Mission{}, ValidationError{Reason: fmt.Sprintf("wanted category %s, got %s", req.Category, got.Category)}
	}
	return got, nil
}
