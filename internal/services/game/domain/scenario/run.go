package scenario

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cleka/colossus-titan-sub015/internal/services/game/domain/action"
	"github.com/cleka/colossus-titan-sub015/internal/services/game/domain/creature"
	"github.com/cleka/colossus-titan-sub015/internal/services/game/domain/engine"
	"github.com/cleka/colossus-titan-sub015/internal/services/game/domain/game"
	"github.com/cleka/colossus-titan-sub015/internal/services/game/domain/legion"
)

const (
	stepPlayer         = "player"
	stepLegion         = "legion"
	stepTurn           = "turn"
	stepScore          = "score"
	stepRecruit        = "recruit"
	stepSummon         = "summon"
	stepAcquire        = "acquire"
	stepEditAdd        = "edit_add"
	stepUndoSummon     = "undo_summon"
	stepMove           = "move"
	stepExpectHeight   = "expect_height"
	stepExpectContains = "expect_contains"
)

var (
	// ErrBuilderRequired indicates a missing handler builder.
	ErrBuilderRequired = errors.New("handler builder is required")
	// ErrSetupAfterAction indicates a player, legion or score step after the
	// first action or turn. Score changes are not events, so they belong to
	// the setup a replay starts from.
	ErrSetupAfterAction = errors.New("setup steps must precede actions")
	// ErrExpectation indicates a failed expectation step.
	ErrExpectation = errors.New("scenario expectation failed")
	// ErrUnknownStep indicates a step kind the runner does not know.
	ErrUnknownStep = errors.New("unknown scenario step")
)

// Builder creates the commit handler for the state a scenario set up.
type Builder func(state *game.State) (*engine.Handler, error)

// Run sets up a game from the scenario's setup steps, builds a handler for
// it and commits every action in order. An action step may carry
// expect_error = "<CODE>" to assert that it is rejected with that code.
func Run(ctx context.Context, sc *Scenario, build Builder) (*engine.Handler, error) {
	if sc == nil {
		return nil, ErrNoScenario
	}
	if build == nil {
		return nil, ErrBuilderRequired
	}
	r := &runner{state: game.NewState()}
	for i, step := range sc.Steps {
		if err := r.step(ctx, step, build); err != nil {
			return r.handler, fmt.Errorf("scenario %q step %d (%s): %w", sc.Name, i+1, step.Kind, err)
		}
	}
	if r.handler == nil {
		handler, err := build(r.state)
		if err != nil {
			return nil, fmt.Errorf("build handler: %w", err)
		}
		r.handler = handler
	}
	return r.handler, nil
}

type runner struct {
	state   *game.State
	handler *engine.Handler
}

func (r *runner) step(ctx context.Context, step Step, build Builder) error {
	switch step.Kind {
	case stepPlayer, stepLegion, stepScore:
		if r.handler != nil {
			return ErrSetupAfterAction
		}
		return r.setup(step)
	case stepExpectHeight, stepExpectContains:
		return r.expect(step)
	}

	if r.handler == nil {
		handler, err := build(r.state)
		if err != nil {
			return fmt.Errorf("build handler: %w", err)
		}
		r.handler = handler
	}
	if step.Kind == stepTurn {
		want := intArg(step, "turn")
		if want < r.handler.Turn() {
			return fmt.Errorf("turn %d is before current turn %d", want, r.handler.Turn())
		}
		for r.handler.Turn() < want {
			r.handler.AdvanceTurn()
		}
		return nil
	}

	act, err := r.action(step)
	if err == nil {
		_, err = r.handler.Commit(ctx, act)
	}
	wantCode := stringArg(step, "expect_error")
	if wantCode == "" {
		return err
	}
	if err == nil {
		return fmt.Errorf("%w: expected %s, action succeeded", ErrExpectation, wantCode)
	}
	if got := engine.Code(err); string(got) != wantCode {
		return fmt.Errorf("%w: expected %s, got %s: %v", ErrExpectation, wantCode, got, err)
	}
	return nil
}

func (r *runner) setup(step Step) error {
	switch step.Kind {
	case stepPlayer:
		_, err := r.state.AddPlayer(stringArg(step, "name"), intArg(step, "score"))
		return err
	case stepScore:
		p, ok := r.state.Player(stringArg(step, "player"))
		if !ok {
			return game.ErrPlayerNotFound
		}
		p.AddScore(intArg(step, "points"))
		return nil
	}
	creatures, err := creature.ParseNames(stringsArg(step, "creatures"))
	if err != nil {
		return err
	}
	_, err = r.state.AddLegion(
		stringArg(step, "marker"),
		stringArg(step, "owner"),
		legion.HexLabel(stringArg(step, "hex")),
		creatures...,
	)
	return err
}

// action resolves the legions a step names. A marker that is not on the
// board yields a nil legion so the action constructor reports it.
func (r *runner) action(step Step) (action.Action, error) {
	target := r.legion(stringArg(step, "legion"))
	switch step.Kind {
	case stepRecruit:
		recruited, err := creature.New(stringArg(step, "creature"))
		if err != nil {
			return nil, err
		}
		recruiter, err := creature.New(stringArg(step, "recruiter"))
		if err != nil {
			return nil, err
		}
		return action.NewRecruitment(target, recruited, recruiter)
	case stepSummon:
		t, err := creature.New(stringArg(step, "creature"))
		if err != nil {
			return nil, err
		}
		return action.NewSummoning(target, r.legion(stringArg(step, "donor")), t)
	case stepAcquire, stepEditAdd, stepUndoSummon:
		t, err := creature.New(stringArg(step, "creature"))
		if err != nil {
			return nil, err
		}
		switch step.Kind {
		case stepAcquire:
			return action.NewAcquisition(target, t)
		case stepEditAdd:
			return action.NewEditAddCreature(target, t)
		default:
			return action.NewSummonUndo(target, t)
		}
	case stepMove:
		return action.NewRelocateLegion(target, legion.HexLabel(stringArg(step, "hex")))
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownStep, step.Kind)
}

func (r *runner) legion(marker string) legion.Legion {
	l, ok := r.state.Legion(marker)
	if !ok {
		return nil
	}
	return l
}

func (r *runner) expect(step Step) error {
	marker := stringArg(step, "legion")
	l, ok := r.state.Legion(marker)
	if !ok {
		return fmt.Errorf("legion %q: %w", marker, game.ErrLegionNotFound)
	}
	switch step.Kind {
	case stepExpectHeight:
		if want := intArg(step, "height"); l.Height() != want {
			return fmt.Errorf("%w: %s height = %d, want %d", ErrExpectation, marker, l.Height(), want)
		}
	case stepExpectContains:
		t, err := creature.New(stringArg(step, "creature"))
		if err != nil {
			return err
		}
		if want := intArg(step, "count"); l.NumCreature(t) != want {
			return fmt.Errorf("%w: %s holds %d %s, want %d", ErrExpectation, marker, l.NumCreature(t), t, want)
		}
	}
	return nil
}

func stringArg(step Step, key string) string {
	value, _ := step.Args[key].(string)
	return strings.TrimSpace(value)
}

func intArg(step Step, key string) int {
	switch value := step.Args[key].(type) {
	case int:
		return value
	case float64:
		return int(value)
	}
	return 0
}

func stringsArg(step Step, key string) []string {
	values, _ := step.Args[key].([]any)
	out := make([]string, 0, len(values))
	for _, value := range values {
		if s, ok := value.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
