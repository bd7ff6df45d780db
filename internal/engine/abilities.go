package engine

import (
	"context"
	"strings"

	"github.com/Libretto-Pic/the-sage-game/internal/catalog"
)

type AbilityResult struct {
	Ability    string
	Evaluation string
	Worthy     bool
	Level      int
	SaveErr    error
}

func (g *Game) lookupAbility(op, id string) (catalog.Ability, error) {
	a, ok := g.cat.Ability(id)
	if !ok {
		return a, invalid(op, ErrUnknownAbility, "no ability %q", id)
	}
	return a, nil
}

type QuestionResult struct {
	Ability  string
	Question string
	SaveErr  error
}

// StartAbilityTest asks the question that guards the ability's next level. An open
// test is returned as is.
func (g *Game) StartAbilityTest(ctx context.Context, id string) (QuestionResult, error) {
	a, err := g.lookupAbility("ability test", id)
	if err != nil {
		return QuestionResult{}, err
	}
	if err := g.beginGeneration(); err != nil {
		return QuestionResult{}, err
	}
	defer g.endGeneration()

	res := QuestionResult{Ability: a.ID}
	// open reports an already running test, or why a new one may not start.
	open := func() (bool, error) {
		if t, ok := g.state.CurrentTests[a.ID]; ok {
			res.Question = t.Question
			return true, nil
		}
		return false, CanTestAbility(g.state, a)
	}
	var (
		level   int
		running bool
	)
	err = g.locked(ctx, func() error {
		var err error
		running, err = open()
		level = AbilityLevel(g.state, a.ID)
		return err
	})
	if err != nil || running {
		return res, err
	}

	q, _ := g.gen.AbilityQuestion(ctx, level, a.ID)

	err = g.locked(ctx, func() error {
		if running, err := open(); err != nil || running {
			return err
		}
		next := g.state.Clone()
		next.CurrentTests[a.ID] = AbilityTest{Question: q, Day: next.Day}
		res.Question = q
		res.SaveErr = g.commit(ctx, next, nil)
		return nil
	})
	return res, err
}

// SubmitAbilityTest has the answer judged. A worthy answer raises the ability a level.
func (g *Game) SubmitAbilityTest(ctx context.Context, id, answer string) (AbilityResult, error) {
	a, err := g.lookupAbility("ability answer", id)
	if err != nil {
		return AbilityResult{}, err
	}
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return AbilityResult{}, invalid("ability answer", nil, "answer is empty")
	}
	if err := g.beginGeneration(); err != nil {
		return AbilityResult{}, err
	}
	defer g.endGeneration()

	var test AbilityTest
	err = g.locked(ctx, func() error {
		var ok bool
		if test, ok = g.state.CurrentTests[a.ID]; !ok {
			return invalid("ability answer", ErrNoActiveTest, "start a %s test first", a.ID)
		}
		return nil
	})
	if err != nil {
		return AbilityResult{}, err
	}

	j, _ := g.gen.JudgeAnswer(ctx, a.ID, test.Question, answer)

	var res AbilityResult
	err = g.locked(ctx, func() error {
		if cur, ok := g.state.CurrentTests[a.ID]; !ok || cur.Question != test.Question {
			return invalid("ability answer", ErrNoActiveTest, "the %s test changed while it was judged", a.ID)
		}
		next := g.state.Clone()
		res = AbilityResult{Ability: a.ID, Evaluation: j.Evaluation, Worthy: j.Worthy}
		if j.Worthy {
			next.AbilityLevels[a.ID] = AbilityLevel(next, a.ID) + 1
			next.AbilityXP[a.ID] = max(next.AbilityXP[a.ID]-a.XPPerLevel, 0)
			delete(next.CurrentTests, a.ID)
			g.log.Info("ability ascended", "ability", a.ID, "level", next.AbilityLevels[a.ID])
		}
		res.Level = AbilityLevel(next, a.ID)
		res.SaveErr = g.commit(ctx, next, nil)
		return nil
	})
	return res, err
}
