package scenario

import (
	"math"

	"github.com/Shopify/go-lua"
)

const scenarioTypeName = "scenario"

func registerLuaTypes(state *lua.State) {
	lua.NewMetaTable(state, scenarioTypeName)
	state.NewTable()
	lua.SetFunctions(state, scenarioMethods, 0)
	state.SetField(-2, "__index")
	state.Pop(1)

	state.NewTable()
	lua.SetFunctions(state, scenarioConstructor, 0)
	state.SetGlobal("Scenario")
}

var scenarioConstructor = []lua.RegistryFunction{
	{Name: "new", Function: scenarioNew},
}

func scenarioNew(state *lua.State) int {
	name := lua.OptString(state, 1, "")
	state.PushUserData(&Scenario{Name: name})
	lua.SetMetaTableNamed(state, scenarioTypeName)
	return 1
}

var scenarioMethods = []lua.RegistryFunction{
	{Name: "player", Function: scenarioPlayer},
	{Name: "legion", Function: scenarioLegion},
	{Name: "turn", Function: scenarioTurn},
	{Name: "score", Function: scenarioScore},
	{Name: "recruit", Function: scenarioRecruit},
	{Name: "summon", Function: scenarioSummon},
	{Name: "acquire", Function: creatureStep(stepAcquire)},
	{Name: "edit_add", Function: creatureStep(stepEditAdd)},
	{Name: "undo_summon", Function: creatureStep(stepUndoSummon)},
	{Name: "move", Function: scenarioMove},
	{Name: "expect_height", Function: scenarioExpectHeight},
	{Name: "expect_contains", Function: scenarioExpectContains},
}

func scenarioPlayer(state *lua.State) int {
	scenario := checkScenario(state)
	data := optionalTable(state, 3)
	data["name"] = lua.CheckString(state, 2)
	appendStep(scenario, stepPlayer, data)
	return 0
}

func scenarioLegion(state *lua.State) int {
	scenario := checkScenario(state)
	marker := lua.CheckString(state, 2)
	lua.CheckType(state, 3, lua.TypeTable)
	data := tableToMap(state, 3)
	data["marker"] = marker
	appendStep(scenario, stepLegion, data)
	return 0
}

func scenarioTurn(state *lua.State) int {
	scenario := checkScenario(state)
	appendStep(scenario, stepTurn, map[string]any{"turn": lua.CheckInteger(state, 2)})
	return 0
}

func scenarioScore(state *lua.State) int {
	scenario := checkScenario(state)
	appendStep(scenario, stepScore, map[string]any{
		"player": lua.CheckString(state, 2),
		"points": lua.CheckInteger(state, 3),
	})
	return 0
}

func scenarioRecruit(state *lua.State) int {
	scenario := checkScenario(state)
	data := optionalTable(state, 5)
	data["legion"] = lua.CheckString(state, 2)
	data["creature"] = lua.CheckString(state, 3)
	data["recruiter"] = lua.CheckString(state, 4)
	appendStep(scenario, stepRecruit, data)
	return 0
}

func scenarioSummon(state *lua.State) int {
	scenario := checkScenario(state)
	data := optionalTable(state, 5)
	data["legion"] = lua.CheckString(state, 2)
	data["donor"] = lua.CheckString(state, 3)
	data["creature"] = lua.CheckString(state, 4)
	appendStep(scenario, stepSummon, data)
	return 0
}

// creatureStep binds the methods that take a legion and one creature.
func creatureStep(kind string) lua.Function {
	return func(state *lua.State) int {
		scenario := checkScenario(state)
		data := optionalTable(state, 4)
		data["legion"] = lua.CheckString(state, 2)
		data["creature"] = lua.CheckString(state, 3)
		appendStep(scenario, kind, data)
		return 0
	}
}

func scenarioMove(state *lua.State) int {
	scenario := checkScenario(state)
	data := optionalTable(state, 4)
	data["legion"] = lua.CheckString(state, 2)
	data["hex"] = lua.CheckString(state, 3)
	appendStep(scenario, stepMove, data)
	return 0
}

func scenarioExpectHeight(state *lua.State) int {
	scenario := checkScenario(state)
	appendStep(scenario, stepExpectHeight, map[string]any{
		"legion": lua.CheckString(state, 2),
		"height": lua.CheckInteger(state, 3),
	})
	return 0
}

func scenarioExpectContains(state *lua.State) int {
	scenario := checkScenario(state)
	appendStep(scenario, stepExpectContains, map[string]any{
		"legion":   lua.CheckString(state, 2),
		"creature": lua.CheckString(state, 3),
		"count":    lua.OptInteger(state, 4, 1),
	})
	return 0
}

func checkScenario(state *lua.State) *Scenario {
	ud := lua.CheckUserData(state, 1, scenarioTypeName)
	if scenario, ok := ud.(*Scenario); ok && scenario != nil {
		return scenario
	}
	lua.ArgumentError(state, 1, "scenario expected")
	return nil
}

func appendStep(scenario *Scenario, kind string, data map[string]any) {
	if scenario == nil {
		return
	}
	if data == nil {
		data = map[string]any{}
	}
	scenario.Steps = append(scenario.Steps, Step{Kind: kind, Args: data})
}

func optionalTable(state *lua.State, index int) map[string]any {
	if state.IsNoneOrNil(index) || state.TypeOf(index) != lua.TypeTable {
		return map[string]any{}
	}
	return tableToMap(state, index)
}

func tableToMap(state *lua.State, index int) map[string]any {
	output := map[string]any{}
	if state.TypeOf(index) != lua.TypeTable {
		return output
	}

	index = state.AbsIndex(index)
	state.PushNil()
	for state.Next(index) {
		if state.TypeOf(-2) == lua.TypeString {
			key, _ := state.ToString(-2)
			output[key] = luaToGo(state, -1)
		}
		state.Pop(1)
	}
	return output
}

func luaToGo(state *lua.State, index int) any {
	switch state.TypeOf(index) {
	case lua.TypeString:
		value, _ := state.ToString(index)
		return value
	case lua.TypeNumber:
		value, _ := state.ToNumber(index)
		if math.Mod(value, 1) == 0 {
			return int(value)
		}
		return value
	case lua.TypeBoolean:
		return state.ToBoolean(index)
	case lua.TypeTable:
		return tableToList(state, index)
	default:
		return nil
	}
}

// tableToList converts array-like tables to []any and anything else to a
// map.
func tableToList(state *lua.State, index int) any {
	index = state.AbsIndex(index)
	length := 0
	isArray := true
	state.PushNil()
	for state.Next(index) {
		if idx, ok := state.ToInteger(-2); ok && state.TypeOf(-2) == lua.TypeNumber && idx > 0 {
			length = max(length, idx)
		} else {
			isArray = false
		}
		state.Pop(1)
	}
	if !isArray || length == 0 {
		return tableToMap(state, index)
	}
	result := make([]any, 0, length)
	for i := 1; i <= length; i++ {
		state.RawGetInt(index, i)
		result = append(result, luaToGo(state, -1))
		state.Pop(1)
	}
	return result
}
