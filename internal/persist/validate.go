package persist

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/rshade/retrofit/internal/finance"
	"github.com/rshade/retrofit/internal/project"
)

// Issue is one validation finding. Path names the offending field.
type Issue struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

func (i Issue) String() string {
	if i.Path == "" {
		return i.Message
	}
	return i.Path + ": " + i.Message
}

// ImportResult lists the findings of a validation pass and the changes made by
// migration. Any error rejects the whole document; warnings never do.
type ImportResult struct {
	Errors     []Issue  `json:"errors,omitempty"`
	Warnings   []Issue  `json:"warnings,omitempty"`
	Migrations []string `json:"migrations,omitempty"`
}

// OK reports whether the document can be accepted.
func (r ImportResult) OK() bool {
	return len(r.Errors) == 0
}

// Err returns nil when OK, otherwise ErrImportRejected wrapping the itemised errors.
func (r ImportResult) Err() error {
	if r.OK() {
		return nil
	}
	msgs := make([]string, len(r.Errors))
	for i, e := range r.Errors {
		msgs[i] = e.String()
	}
	return fmt.Errorf("%w: %s", ErrImportRejected, strings.Join(msgs, "; "))
}

func (r *ImportResult) errorf(path, format string, args ...any) {
	r.Errors = append(r.Errors, Issue{Path: path, Message: fmt.Sprintf(format, args...)})
}

func (r *ImportResult) warnf(path, format string, args ...any) {
	r.Warnings = append(r.Warnings, Issue{Path: path, Message: fmt.Sprintf(format, args...)})
}

func isObject(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '{'
}

// Validate checks a raw document without decoding it into project state.
//
// projectBaseInfo, projectBaseInfo.name and modules are required. Missing
// transformers, bills or priceConfig and a version other than CurrentVersion
// produce warnings.
func Validate(raw []byte) ImportResult {
	var res ImportResult

	var top map[string]json.RawMessage
	if err := json.Unmarshal(raw, &top); err != nil {
		res.errorf("", "document is not a JSON object: %v", err)
		return res
	}

	validateBaseInfo(&res, top["projectBaseInfo"])
	validateModules(&res, top["modules"])

	for _, field := range []string{"transformers", "bills"} {
		v, ok := top[field]
		switch {
		case !ok || isNull(v):
			res.warnf(field, "missing, defaulting to an empty list")
		case !bytes.HasPrefix(bytes.TrimSpace(v), []byte("[")):
			res.errorf(field, "must be an array")
		}
	}
	validatePriceConfig(&res, top["priceConfig"])
	validateVersion(&res, top["version"])

	return res
}

func isNull(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

func validateBaseInfo(res *ImportResult, raw json.RawMessage) {
	if isNull(raw) {
		res.errorf("projectBaseInfo", "is required")
		return
	}
	if !isObject(raw) {
		res.errorf("projectBaseInfo", "must be an object")
		return
	}
	var base struct {
		Name         *string  `json:"name"`
		DiscountRate *float64 `json:"discountRate"`
	}
	if err := json.Unmarshal(raw, &base); err != nil {
		res.errorf("projectBaseInfo", "is malformed: %v", err)
		return
	}
	if base.Name == nil || strings.TrimSpace(*base.Name) == "" {
		res.errorf("projectBaseInfo.name", "is required")
	}
	if base.DiscountRate != nil && *base.DiscountRate <= MinDiscountRate {
		res.warnf("projectBaseInfo.discountRate", "%v is not above %v, the engine default will be used", *base.DiscountRate, MinDiscountRate)
	}
}

func validateModules(res *ImportResult, raw json.RawMessage) {
	if isNull(raw) {
		res.errorf("modules", "is required")
		return
	}
	if !isObject(raw) {
		res.errorf("modules", "must be an object")
		return
	}
	var modules map[string]json.RawMessage
	if err := json.Unmarshal(raw, &modules); err != nil {
		res.errorf("modules", "is malformed: %v", err)
		return
	}
	for key, m := range modules {
		path := "modules." + key
		var mod project.Module
		if err := json.Unmarshal(m, &mod); err != nil {
			res.errorf(path, "is malformed: %v", err)
			continue
		}
		canonical := normalizeKey(key)
		if !project.ModuleKey(canonical).IsKnown() {
			res.warnf(path, "unknown module, it will be kept but not evaluated")
		}
		if canonical != key {
			if _, ok := modules[canonical]; ok {
				res.warnf(path, "duplicates %s and will be dropped", canonical)
			}
		}
	}
}

func validatePriceConfig(res *ImportResult, raw json.RawMessage) {
	if isNull(raw) {
		res.warnf("priceConfig", "missing, using the default tariff")
		return
	}
	var p project.PriceConfig
	if err := json.Unmarshal(raw, &p); err != nil {
		res.errorf("priceConfig", "is malformed: %v", err)
		return
	}
	switch p.Mode {
	case project.PriceModeTOU:
		if err := finance.ValidateTOU(p.TOUSegments); err != nil {
			res.warnf("priceConfig.touSegments", "%v", err)
		}
	case project.PriceModeSpot:
		if len(p.SpotPrices) != project.SpotHours {
			res.warnf("priceConfig.spotPrices", "expected %d hourly prices, got %d", project.SpotHours, len(p.SpotPrices))
		}
	case project.PriceModeFixed:
		if p.FixedPrice <= 0 {
			res.warnf("priceConfig.fixedPrice", "should be positive")
		}
	default:
		res.warnf("priceConfig.mode", "unknown mode %q, using the default tariff price", p.Mode)
	}
}

func validateVersion(res *ImportResult, raw json.RawMessage) {
	var v string
	if !isNull(raw) {
		if err := json.Unmarshal(raw, &v); err != nil {
			res.warnf("version", "is not a string")
			return
		}
	}
	if v == "" {
		res.warnf("version", "missing, assuming %s", CurrentVersion)
		return
	}
	if v == CurrentVersion {
		return
	}

	got, err := semver.NewVersion(v)
	if err != nil {
		res.warnf("version", "%q is not a valid version, expected %s", v, CurrentVersion)
		return
	}
	current := semver.MustParse(CurrentVersion)
	switch {
	case got.GreaterThan(current):
		res.warnf("version", "document version %s is newer than supported %s", got, current)
	case got.LessThan(current):
		res.warnf("version", "document version %s is older than %s and will be migrated", got, current)
	}
}
