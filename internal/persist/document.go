// Package persist serialises projects to the versioned JSON document used for
// storage, import and export, and validates documents before accepting them.
package persist

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/rshade/retrofit/internal/calc"
	"github.com/rshade/retrofit/internal/project"
)

// CurrentVersion is the document version written by this build.
const CurrentVersion = "1.0.0"

// DefaultProjectName names projects that have none.
const DefaultProjectName = "Untitled project"

// Document is the persisted and exported project shape.
type Document struct {
	BaseInfo     *project.BaseInfo                    `json:"projectBaseInfo"`
	Modules      map[project.ModuleKey]project.Module `json:"modules"`
	Transformers []project.Transformer                `json:"transformers"`
	Bills        []project.Bill                       `json:"bills"`
	PriceConfig  *project.PriceConfig                 `json:"priceConfig"`
	Version      string                               `json:"version"`
	LastSaved    *time.Time                           `json:"lastSaved,omitempty"`
}

// FromState builds the document for s, stamped with now.
func FromState(s *project.State, now time.Time) Document {
	c := s.Clone()
	base := c.BaseInfo
	price := c.Context.Price
	saved := now.UTC()

	doc := Document{
		BaseInfo:     &base,
		Modules:      c.Modules,
		Transformers: c.Context.Transformers,
		Bills:        c.Context.Bills,
		PriceConfig:  &price,
		Version:      CurrentVersion,
		LastSaved:    &saved,
	}
	if doc.Modules == nil {
		doc.Modules = map[project.ModuleKey]project.Module{}
	}
	if doc.Transformers == nil {
		doc.Transformers = []project.Transformer{}
	}
	if doc.Bills == nil {
		doc.Bills = []project.Bill{}
	}
	if doc.BaseInfo.Buildings == nil {
		doc.BaseInfo.Buildings = []project.Building{}
	}
	return doc
}

// ToState converts a migrated document into project state.
func (d Document) ToState() *project.State {
	s := &project.State{Modules: make(map[project.ModuleKey]project.Module, len(d.Modules))}
	if d.BaseInfo != nil {
		s.BaseInfo = *d.BaseInfo
	}
	for k, m := range d.Modules {
		s.Modules[k] = m
	}
	s.Context.Transformers = d.Transformers
	s.Context.Bills = d.Bills
	if d.PriceConfig != nil {
		s.Context.Price = *d.PriceConfig
	} else {
		s.Context.Price = project.DefaultPriceConfig()
	}
	return s.Clone()
}

// Export encodes s as an indented document.
func Export(s *project.State, now time.Time) ([]byte, error) {
	data, err := json.MarshalIndent(FromState(s, now), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding project document: %w", err)
	}
	return data, nil
}

//nolint:gochecknoglobals // Compiled once.
var unsafeFilenameChars = regexp.MustCompile(`[\\/:*?"<>|\s]+`)

// ExportFilename returns "{name}_config_{YYYY-MM-DD}.json".
func ExportFilename(name string, now time.Time) string {
	name = strings.Trim(unsafeFilenameChars.ReplaceAllString(strings.TrimSpace(name), "_"), "_")
	if name == "" {
		name = "project"
	}
	return fmt.Sprintf("%s_config_%s.json", name, now.Format(time.DateOnly))
}

// DefaultState is the project used on first run: every module present with
// default params and inactive, no transformers or bills, and the default tariff.
func DefaultState() *project.State {
	s := &project.State{
		BaseInfo: project.BaseInfo{Name: DefaultProjectName, Buildings: []project.Building{}},
		Modules:  make(map[project.ModuleKey]project.Module, len(project.AllKeys())),
		Context: project.Context{
			Transformers: []project.Transformer{},
			Bills:        []project.Bill{},
			Price:        project.DefaultPriceConfig(),
		},
	}
	for _, k := range project.AllKeys() {
		if m, err := calc.NewModule(k); err == nil {
			s.Modules[k] = m
		}
	}
	return s
}
