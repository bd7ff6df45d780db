package generator

import (
	"context"
	"io"
	"log/slog"
)

// Guarded wraps a primary provider and answers from a fallback whenever the primary
// fails. Its methods never return an error.
type Guarded struct {
	primary  Provider
	fallback Provider
	log      *slog.Logger
}

// Guard returns a provider that always succeeds. A nil primary means fallback only.
func Guard(primary, fallback Provider, log *slog.Logger) *Guarded {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Guarded{primary: primary, fallback: fallback, log: log}
}

func (g *Guarded) Generate(ctx context.Context, req BatchRequest) ([]Mission, error) {
	if len(req.Categories) == 0 {
		return nil, nil
	}
	if g.primary != nil {
		got, err := g.primary.Generate(ctx, req)
		if err == nil {
			got, err = ValidateBatch(req, got)
		}
		if err == nil {
			return got, nil
		}
		g.log.Warn("generator fallback", "op", "generate", "categories", req.Categories, "err", err)
	}
	return g.fallback.Generate(ctx, req)
}

func (g *Guarded) GenerateSingle(ctx context.Context, req SingleRequest) (Mission, error) {
	if g.primary != nil {
		got, err := g.primary.GenerateSingle(ctx, req)
		if err == nil {
			got, err = ValidateSingle(req, got)
		}
		if err == nil {
			return got, nil
		}
		g.log.Warn("generator fallback", "op", "generate_single", "category", req.Category, "err", err)
	}
	return g.fallback.GenerateSingle(ctx, req)
}

func (g *Guarded) GenerateThemed(ctx context.Context, req ThemedRequest) (Mission, error) {
	if g.primary != nil {
		got, err := g.primary.GenerateThemed(ctx, req)
		if err == nil {
			if req.Category.IsValid() {
				got.Category = req.Category
			}
			err = validateMission(got, nil)
		}
		if err == nil {
			return got, nil
		}
		g.log.Warn("generator fallback", "op", "generate_themed", "theme", req.Theme, "err", err)
	}
	return g.fallback.GenerateThemed(ctx, req)
}

func (g *Guarded) AbilityQuestion(ctx context.Context, level int, ability string) (string, error) {
	if g.primary != nil {
		q, err := g.primary.AbilityQuestion(ctx, level, ability)
		if err == nil && q != "" {
			return q, nil
		}
		g.log.Warn("generator fallback", "op", "ability_question", "ability", ability, "err", err)
	}
	return g.fallback.AbilityQuestion(ctx, level, ability)
}

func (g *Guarded) JudgeAnswer(ctx context.Context, ability, question, answer string) (Judgement, error) {
	if g.primary != nil {
		j, err := g.primary.JudgeAnswer(ctx, ability, question, answer)
		if err == nil && j.Evaluation != "" {
			return j, nil
		}
		g.log.Warn("generator fallback", "op", "judge_answer", "ability", ability, "err", err)
	}
	return g.fallback.JudgeAnswer(ctx, ability, question, answer)
}
