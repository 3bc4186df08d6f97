package persist

import (
	"strings"

	"github.com/rshade/retrofit/internal/calc"
	"github.com/rshade/retrofit/internal/logging"
	"github.com/rshade/retrofit/internal/project"
)

// legacyKeyPrefix is prepended to short module keys written by early versions.
const legacyKeyPrefix = "retrofit-"

// MinDiscountRate is the exclusive lower bound of a usable discount rate.
// At -1 and below every discount factor is infinite or changes sign.
const MinDiscountRate = -1.0

func normalizeKey(key string) string {
	if strings.HasPrefix(key, legacyKeyPrefix) {
		return key
	}
	return legacyKeyPrefix + key
}

// Migrate brings a validated document up to CurrentVersion in place: optional
// sections get their defaults, short module keys are expanded, module IDs are
// filled from their keys, missing modules are added inactive and records without an ID receive a ULID. It returns
// a description of every change.
func Migrate(doc *Document) []string {
	var changes []string

	if doc.Transformers == nil {
		doc.Transformers = []project.Transformer{}
	}
	if doc.Bills == nil {
		doc.Bills = []project.Bill{}
	}
	if doc.PriceConfig == nil {
		p := project.DefaultPriceConfig()
		doc.PriceConfig = &p
		changes = append(changes, "priceConfig set to the default tariff")
	}
	if n := len(doc.PriceConfig.SpotPrices); n != project.SpotHours {
		spot := make([]float64, project.SpotHours)
		copy(spot, doc.PriceConfig.SpotPrices)
		for h := n; h < project.SpotHours; h++ {
			spot[h] = project.DefaultFixedPrice
		}
		doc.PriceConfig.SpotPrices = spot
		changes = append(changes, "priceConfig.spotPrices resized to 24 hours")
	}
	if doc.BaseInfo != nil && doc.BaseInfo.Buildings == nil {
		doc.BaseInfo.Buildings = []project.Building{}
	}
	if doc.BaseInfo != nil && doc.BaseInfo.DiscountRate != nil && *doc.BaseInfo.DiscountRate <= MinDiscountRate {
		doc.BaseInfo.DiscountRate = nil
		changes = append(changes, "projectBaseInfo.discountRate cleared")
	}

	modules := make(map[project.ModuleKey]project.Module, len(doc.Modules))
	for key, m := range doc.Modules {
		nk := project.ModuleKey(normalizeKey(string(key)))
		if nk != key {
			// A canonical entry always wins over its short alias.
			if _, ok := doc.Modules[nk]; ok {
				changes = append(changes, "module key "+string(key)+" dropped in favour of "+string(nk))
				continue
			}
			changes = append(changes, "module key "+string(key)+" renamed to "+string(nk))
		}
		m.ID = nk
		modules[nk] = m
	}
	for _, k := range project.AllKeys() {
		if _, ok := modules[k]; ok {
			continue
		}
		if m, err := calc.NewModule(k); err == nil {
			modules[k] = m
			changes = append(changes, "module "+string(k)+" added with default params")
		}
	}
	doc.Modules = modules

	for i := range doc.Transformers {
		if doc.Transformers[i].ID == "" {
			doc.Transformers[i].ID = logging.NewID()
			changes = append(changes, "transformer "+doc.Transformers[i].Name+" assigned an ID")
		}
	}
	for i := range doc.Bills {
		if doc.Bills[i].ID == "" {
			doc.Bills[i].ID = logging.NewID()
			changes = append(changes, "bill "+doc.Bills[i].Month+" assigned an ID")
		}
	}

	if doc.Version != CurrentVersion {
		changes = append(changes, "version set to "+CurrentVersion)
		doc.Version = CurrentVersion
	}
	return changes
}
