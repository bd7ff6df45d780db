package generator

import (
	"context"
	"fmt"
	"strings"

	"github.com/Libretto-Pic/the-sage-game/internal/catalog"
)

// MinWorthyWords is how long an ability test answer must be when no judge is reachable.
const MinWorthyWords = 12

// Fallback serves deterministic static content from the catalog. It never fails.
type Fallback struct {
	cat *catalog.Catalog
}

func NewFallback(cat *catalog.Catalog) *Fallback {
	return &Fallback{cat: cat}
}

func (f *Fallback) Generate(_ context.Context, req BatchRequest) ([]Mission, error) {
	out := make([]Mission, 0, len(req.Categories))
	for _, c := range req.Categories {
		out = append(out, f.mission(c))
	}
	return out, nil
}

func (f *Fallback) GenerateSingle(_ context.Context, req SingleRequest) (Mission, error) {
	return f.mission(req.Category), nil
}

func (f *Fallback) GenerateThemed(_ context.Context, req ThemedRequest) (Mission, error) {
	cat := req.Category
	if !cat.IsValid() {
		cat = catalog.CategorySoul
	}
	theme := strings.TrimSpace(req.Theme)
	if theme == "" {
		theme = "the Path"
	}
	desc := strings.TrimSpace(req.Context)
	if desc == "" {
		desc = "Spend 30 focused minutes on the habit you have been avoiding, then write one line about it."
	}
	return Mission{
		Title:       "Trial of " + theme,
		Description: desc,
		Category:    cat,
		Difficulty:  catalog.DifficultyMedium,
	}, nil
}

func (f *Fallback) AbilityQuestion(_ context.Context, _ int, ability string) (string, error) {
	if a, ok := f.cat.Ability(ability); ok && a.Question != "" {
		return a.Question, nil
	}
	return fmt.Sprintf("Describe one concrete way you trained your %s this week and what it taught you.", ability), nil
}

func (f *Fallback) JudgeAnswer(_ context.Context, _ string, _ string, answer string) (Judgement, error) {
	words := len(strings.Fields(answer))
	if words >= MinWorthyWords {
		return Judgement{Evaluation: "Your answer shows reflection. You may ascend.", Worthy: true}, nil
	}
	return Judgement{Evaluation: fmt.Sprintf("Too brief (%d words). Reflect more deeply.", words), Worthy: false}, nil
}

func (f *Fallback) mission(c catalog.Category) Mission {
	t := f.cat.FallbackFor(c)
	d := t.Difficulty
	if !d.IsValid() {
		d = catalog.DifficultyEasy
	}
	return Mission{Title: t.Title, Description: t.Description, Category: c, Difficulty: d}
}
