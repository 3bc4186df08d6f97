package calc

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/rshade/retrofit/internal/project"
)

// ErrUnknownModule is returned for module keys without a calculator.
const ErrUnknownModule = constError("unknown module")

// ErrInvalidParams wraps parameter decoding failures.
const ErrInvalidParams = constError("invalid module params")

type constError string

func (e constError) Error() string { return string(e) }

// module binds a key to its display name, defaults and calculator.
type module struct {
	name     string
	defaults func() any
	run      func(raw json.RawMessage, in Inputs) (Result, error)
}

func bind[P any](name string, defaults func() P, calc func(P, Inputs) Result) module {
	return module{
		name:     name,
		defaults: func() any { return defaults() },
		run: func(raw json.RawMessage, in Inputs) (Result, error) {
			p, err := Decode[P](raw)
			return calc(p, in), err
		},
	}
}

//nolint:gochecknoglobals // Read-only dispatch table.
var modules = map[project.ModuleKey]module{
	project.KeySolar:     bind("Rooftop Solar PV", DefaultSolarParams, CalculateSolar),
	project.KeyStorage:   bind("Battery Storage", DefaultStorageParams, CalculateStorage),
	project.KeyHVAC:      bind("HVAC Upgrade", DefaultHVACParams, CalculateHVAC),
	project.KeyLighting:  bind("LED Lighting", DefaultLightingParams, CalculateLighting),
	project.KeyEV:        bind("EV Charging", DefaultEVParams, CalculateEV),
	project.KeyWater:     bind("Water Heating", DefaultWaterParams, CalculateWater),
	project.KeyMicrogrid: bind("Microgrid", DefaultMicrogridParams, CalculateMicrogrid),
	project.KeyVPP:       bind("Virtual Power Plant", DefaultVPPParams, CalculateVPP),
	project.KeyAI:        bind("AI Energy Platform", DefaultAIParams, CalculateAI),
	project.KeyCarbon:    bind("Carbon Accounting", DefaultCarbonParams, CalculateCarbon),
}

// Decode reads module params. Empty or null input yields the zero value, and so
// does any field the document omits.
func Decode[P any](raw json.RawMessage) (P, error) {
	var p P
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return p, nil
	}
	if err := json.Unmarshal(trimmed, &p); err != nil {
		var zero P
		return zero, fmt.Errorf("%w: %w", ErrInvalidParams, err)
	}
	return p, nil
}

// Run decodes raw params for key and runs its calculator. Params that fail to
// decode are replaced by the zero value so a Result is always returned; the
// decode error is returned alongside it.
func Run(key project.ModuleKey, raw json.RawMessage, in Inputs) (Result, error) {
	m, ok := modules[key]
	if !ok {
		return Result{}, fmt.Errorf("%w: %s", ErrUnknownModule, key)
	}
	r, err := m.run(raw, in)
	if err != nil {
		r.Warnings = append(r.Warnings, err.Error())
	}
	return r, err
}

// DefaultParams returns the encoded default params for key.
func DefaultParams(key project.ModuleKey) (json.RawMessage, error) {
	m, ok := modules[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownModule, key)
	}
	return json.Marshal(m.defaults())
}

// Name returns the display name for key, or the key itself when unknown.
func Name(key project.ModuleKey) string {
	if m, ok := modules[key]; ok {
		return m.name
	}
	return string(key)
}

// NewModule builds an inactive module with default params.
func NewModule(key project.ModuleKey) (project.Module, error) {
	params, err := DefaultParams(key)
	if err != nil {
		return project.Module{}, err
	}
	return project.Module{ID: key, Name: Name(key), Params: params}, nil
}
