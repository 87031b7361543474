// Package scenario loads scripted games written in Lua and drives them
// through the commit engine.
//
// A script builds a Scenario with setup steps (players, legions) followed
// by actions and expectations:
//
//	local s = Scenario.new("summon and undo")
//	s:player("Alice")
//	s:legion("Rd01", { owner = "Alice", hex = "A1", creatures = { "Titan" } })
//	s:turn(3)
//	s:acquire("Rd01", "Angel")
//	s:expect_height("Rd01", 2)
//	return s
package scenario

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/Shopify/go-lua"
)

// ErrNoScenario indicates a script that did not return a Scenario.
var ErrNoScenario = errors.New("scenario script must return Scenario")

// Scenario is a named list of steps.
type Scenario struct {
	Name  string
	Steps []Step
}

// Step is one scripted instruction.
type Step struct {
	Kind string
	Args map[string]any
}

// LoadFile runs the Lua script at path and returns the scenario it builds.
func LoadFile(path string) (*Scenario, error) {
	state := newState()
	if err := lua.LoadFile(state, path, ""); err != nil {
		return nil, fmt.Errorf("load lua: %w", err)
	}
	scenario, err := run(state)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(scenario.Name) == "" {
		scenario.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return scenario, nil
}

// LoadString runs a Lua chunk and returns the scenario it builds.
func LoadString(source string) (*Scenario, error) {
	state := newState()
	if err := lua.LoadString(state, source); err != nil {
		return nil, fmt.Errorf("load lua: %w", err)
	}
	return run(state)
}

func newState() *lua.State {
	state := lua.NewState()
	lua.OpenLibraries(state)
	registerLuaTypes(state)
	return state
}

func run(state *lua.State) (*Scenario, error) {
	if err := state.ProtectedCall(0, 1, 0); err != nil {
		return nil, fmt.Errorf("run lua: %w", err)
	}
	if state.TypeOf(-1) != lua.TypeUserData {
		state.Pop(1)
		return nil, ErrNoScenario
	}
	ud := state.ToUserData(-1)
	state.Pop(1)
	scenario, ok := ud.(*Scenario)
	if !ok || scenario == nil {
		return nil, ErrNoScenario
	}
	return scenario, nil
}
