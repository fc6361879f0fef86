package game

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Trait keys read by the engine.
const (
	TraitAuthority    = "authority"
	TraitExtraDefense = "extra_defense"
	TraitOnEnter      = "on_enter"

	OnEnterGain  = "gain"
	OnEnterSteal = "steal"
	OnEnterBribe = "bribe"
)

// ErrNotNumeric is returned when a trait that must be a number holds text or a map.
var ErrNotNumeric = errors.New("trait value is not numeric")

type traitKind int

const (
	traitInt traitKind = iota
	traitString
	traitMap
)

// TraitValue is one ability trait: an integer, a free-form string marker
// (e.g. "all"), or a nested trait map such as on_enter.
type TraitValue struct {
	kind   traitKind
	Int    int
	Str    string
	Nested map[string]TraitValue
}

func IntTrait(n int) TraitValue {
	return TraitValue{kind: traitInt, Int: n}
}

func StringTrait(s string) TraitValue {
	return TraitValue{kind: traitString, Str: s}
}

func MapTrait(m map[string]TraitValue) TraitValue {
	return TraitValue{kind: traitMap, Nested: m}
}

// AsInt returns the integer value. Strings of plain digits convert; signed or
// fractional strings, other markers and maps report false.
func (v TraitValue) AsInt() (int, bool) {
	switch v.kind {
	case traitInt:
		return v.Int, true
	case traitString:
		return parseDigits(v.Str)
	default:
		return 0, false
	}
}

// parseDigits accepts only non-empty runs of ASCII digits.
func parseDigits(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}

// AsMap returns the nested map for map-valued traits.
func (v TraitValue) AsMap() (map[string]TraitValue, bool) {
	if v.kind != traitMap {
		return nil, false
	}
	return v.Nested, true
}

func (v TraitValue) clone() TraitValue {
	if v.kind == traitMap {
		nested := make(map[string]TraitValue, len(v.Nested))
		for k, nv := range v.Nested {
			nested[k] = nv.clone()
		}
		v.Nested = nested
	}
	return v
}

func (v TraitValue) plain() any {
	switch v.kind {
	case traitString:
		return v.Str
	case traitMap:
		out := make(map[string]any, len(v.Nested))
		for k, nv := range v.Nested {
			out[k] = nv.plain()
		}
		return out
	default:
		return v.Int
	}
}

func (v TraitValue) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.plain())
}

// UnmarshalJSON mirrors the YAML decoding rules.
func (v *TraitValue) UnmarshalJSON(data []byte) error {
	var raw any
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	tv, err := traitFromJSON(raw)
	if err != nil {
		return err
	}
	*v = tv
	return nil
}

func traitFromJSON(raw any) (TraitValue, error) {
	switch x := raw.(type) {
	case nil:
		return IntTrait(0), nil
	case bool:
		if x {
			return IntTrait(1), nil
		}
		return IntTrait(0), nil
	case json.Number:
		if n, err := strconv.Atoi(x.String()); err == nil {
			return IntTrait(n), nil
		}
		return StringTrait(x.String()), nil
	case string:
		if n, ok := parseDigits(x); ok {
			return IntTrait(n), nil
		}
		return StringTrait(x), nil
	case map[string]any:
		m := make(map[string]TraitValue, len(x))
		for k, nv := range x {
			tv, err := traitFromJSON(nv)
			if err != nil {
				return TraitValue{}, fmt.Errorf("%s: %w", k, err)
			}
			m[k] = tv
		}
		return MapTrait(m), nil
	default:
		return TraitValue{}, fmt.Errorf("unsupported trait value %T", raw)
	}
}

func (v *TraitValue) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		switch node.Tag {
		case "!!bool":
			var b bool
			if err := node.Decode(&b); err != nil {
				return err
			}
			*v = IntTrait(0)
			if b {
				v.Int = 1
			}
		case "!!int":
			var n int
			if err := node.Decode(&n); err != nil {
				return err
			}
			*v = IntTrait(n)
		default:
			// Floats stay textual so they read as the default, like any
			// other non-digit marker.
			if n, ok := parseDigits(node.Value); ok {
				*v = IntTrait(n)
			} else {
				*v = StringTrait(node.Value)
			}
		}
		return nil
	case yaml.MappingNode:
		var m map[string]TraitValue
		if err := node.Decode(&m); err != nil {
			return err
		}
		*v = MapTrait(m)
		return nil
	default:
		return fmt.Errorf("line %d: unsupported trait value", node.Line)
	}
}

// Ability is a card's ability payload: either a flat integer or a trait map.
// Legacy payloads are folded in by Card.Migrate, so the engine only ever
// reads traits through Trait and OnEnter.
type Ability struct {
	Flat   int
	Traits map[string]TraitValue
}

func FlatAbility(n int) Ability {
	return Ability{Flat: n}
}

func TraitAbility(traits map[string]TraitValue) Ability {
	return Ability{Traits: traits}
}

// IsZero reports whether the ability carries nothing.
func (a Ability) IsZero() bool {
	return a.Flat == 0 && len(a.Traits) == 0
}

// Has reports whether the trait key is present.
func (a Ability) Has(key string) bool {
	_, ok := a.Traits[key]
	return ok
}

// Trait reads a numeric trait. Missing or non-numeric values yield def.
func (a Ability) Trait(key string, def int) int {
	v, ok := a.Traits[key]
	if !ok {
		return def
	}
	n, ok := v.AsInt()
	if !ok {
		return def
	}
	return n
}

// OnEnter returns the nested on_enter trait map, if present.
func (a Ability) OnEnter() (map[string]TraitValue, bool) {
	v, ok := a.Traits[TraitOnEnter]
	if !ok {
		return nil, false
	}
	return v.AsMap()
}

// fillMissing copies traits from other whose keys are absent here.
func (a *Ability) fillMissing(other Ability) {
	for k, v := range other.Traits {
		if a.Has(k) {
			continue
		}
		if a.Traits == nil {
			a.Traits = make(map[string]TraitValue)
		}
		a.Traits[k] = v.clone()
	}
}

func (a Ability) Clone() Ability {
	out := Ability{Flat: a.Flat}
	if a.Traits != nil {
		out.Traits = make(map[string]TraitValue, len(a.Traits))
		for k, v := range a.Traits {
			out.Traits[k] = v.clone()
		}
	}
	return out
}

func (a Ability) MarshalJSON() ([]byte, error) {
	if len(a.Traits) == 0 {
		return json.Marshal(a.Flat)
	}
	out := make(map[string]any, len(a.Traits))
	for k, v := range a.Traits {
		out[k] = v.plain()
	}
	return json.Marshal(out)
}

// UnmarshalJSON accepts what MarshalJSON writes: a number or a trait object.
func (a *Ability) UnmarshalJSON(data []byte) error {
	var v TraitValue
	if err := v.UnmarshalJSON(data); err != nil {
		return err
	}
	if m, ok := v.AsMap(); ok {
		*a = TraitAbility(m)
		return nil
	}
	n, ok := v.AsInt()
	if !ok {
		return fmt.Errorf("ability %s is neither a number nor a trait map", data)
	}
	*a = FlatAbility(n)
	return nil
}

func (a *Ability) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		if node.Tag == "!!null" {
			*a = Ability{}
			return nil
		}
		var v TraitValue
		if err := v.UnmarshalYAML(node); err != nil {
			return err
		}
		n, ok := v.AsInt()
		if !ok {
			return fmt.Errorf("line %d: ability %q is neither a number nor a trait map", node.Line, node.Value)
		}
		*a = FlatAbility(n)
		return nil
	case yaml.MappingNode:
		var m map[string]TraitValue
		if err := node.Decode(&m); err != nil {
			return err
		}
		*a = TraitAbility(m)
		return nil
	default:
		return fmt.Errorf("line %d: unsupported ability payload", node.Line)
	}
}
