package match

import (
	"fmt"

	"github.com/google/cel-go/cel"

	"github.com/ppiankov/dispatcher/internal/model"
)

// Rules is a compiled set of carrier eligibility expressions. Each rule is
// a CEL boolean over two maps, load and carrier, for example:
//
//	carrier.home_base_states.exists(s, s == load.origin)
//	load.rate_per_mile >= 2.5 || load.lane in carrier.preferred_lanes
//
// A carrier is eligible for a load only when every rule holds.
type Rules struct {
	rules []rule
}

type rule struct {
	expr string
	prg  cel.Program
}

func newRuleEnv() (*cel.Env, error) {
	return cel.NewEnv(
		cel.Variable("load", cel.DynType),
		cel.Variable("carrier", cel.DynType),
	)
}

// CompileRules compiles every expression once. A syntax or type error is a
// configuration error.
func CompileRules(exprs []string) (*Rules, error) {
	r := &Rules{}
	if len(exprs) == 0 {
		return r, nil
	}

	env, err := newRuleEnv()
	if err != nil {
		return nil, fmt.Errorf("create rule environment: %w", err)
	}

	for i, expr := range exprs {
		ast, issues := env.Compile(expr)
		if issues != nil && issues.Err() != nil {
			return nil, &model.ConfigurationError{
				Field: fmt.Sprintf("match.rules[%d]", i),
				Msg:   fmt.Sprintf("compile %q: %v", expr, issues.Err()),
			}
		}
		if out := ast.OutputType(); !out.IsExactType(cel.BoolType) && !out.IsExactType(cel.DynType) {
			return nil, &model.ConfigurationError{
				Field: fmt.Sprintf("match.rules[%d]", i),
				Msg:   fmt.Sprintf("%q must evaluate to bool, got %s", expr, out),
			}
		}
		prg, err := env.Program(ast)
		if err != nil {
			return nil, &model.ConfigurationError{
				Field: fmt.Sprintf("match.rules[%d]", i),
				Msg:   fmt.Sprintf("program %q: %v", expr, err),
			}
		}
		r.rules = append(r.rules, rule{expr: expr, prg: prg})
	}
	return r, nil
}

// Len returns the number of compiled rules
func (r *Rules) Len() int {
	if r == nil {
		return 0
	}
	return len(r.rules)
}

// Eligible evaluates every rule. It returns the first failing expression
// when the carrier is not eligible.
func (r *Rules) Eligible(load model.LoadRecord, carrier model.CarrierRecord) (bool, string, error) {
	if r.Len() == 0 {
		return true, "", nil
	}

	input := map[string]any{
		"load":    loadVars(load),
		"carrier": carrierVars(carrier),
	}
	for _, rl := range r.rules {
		out, _, err := rl.prg.Eval(input)
		if err != nil {
			return false, rl.expr, fmt.Errorf("evaluate rule %q: %w", rl.expr, err)
		}
		ok, isBool := out.Value().(bool)
		if !isBool {
			return false, rl.expr, fmt.Errorf("evaluate rule %q: expected bool, got %T", rl.expr, out.Value())
		}
		if !ok {
			return false, rl.expr, nil
		}
	}
	return true, "", nil
}

func loadVars(l model.LoadRecord) map[string]any {
	return map[string]any{
		"id":             l.ID,
		"origin":         model.NormalizeCode(l.Origin),
		"destination":    model.NormalizeCode(l.Destination),
		"lane":           l.Lane(),
		"loaded_miles":   int64(l.LoadedMiles),
		"deadhead_miles": int64(l.DeadheadMiles),
		"rate":           l.Rate,
		"rate_per_mile":  l.RatePerMile(),
		"deadhead_ratio": l.DeadheadRatio(),
		"commodity":      l.Commodity.Name,
		"equipment":      model.NormalizeEquipment(l.Equipment),
	}
}

func carrierVars(c model.CarrierRecord) map[string]any {
	equipment := make([]string, 0, len(c.Equipment))
	for _, e := range c.Equipment {
		equipment = append(equipment, model.NormalizeEquipment(e))
	}
	lanes := make([]string, 0, len(c.PreferredLanes))
	for _, lane := range c.PreferredLanes {
		lanes = append(lanes, model.NormalizeCode(lane))
	}
	states := make([]string, 0, len(c.HomeBaseStates))
	for _, s := range c.HomeBaseStates {
		states = append(states, model.NormalizeCode(s))
	}
	return map[string]any{
		"id":               c.ID,
		"name":             c.Name,
		"equipment":        equipment,
		"preferred_lanes":  lanes,
		"home_base_states": states,
	}
}
