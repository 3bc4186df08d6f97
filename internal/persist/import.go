package persist

import (
	"encoding/json"

	"github.com/rshade/retrofit/internal/project"
)

// Import validates raw and, when it is acceptable, migrates it into a new
// project state. On any validation error the returned state is nil.
func Import(raw []byte) (*project.State, ImportResult) {
	res := Validate(raw)
	if !res.OK() {
		return nil, res
	}

	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		res.errorf("", "document is malformed: %v", err)
		return nil, res
	}
	res.Migrations = Migrate(&doc)
	return doc.ToState(), res
}

// ImportInto imports raw and replaces *dst with the result. dst is left
// untouched when the document is rejected.
func ImportInto(dst *project.State, raw []byte) (ImportResult, error) {
	s, res := Import(raw)
	if err := res.Err(); err != nil {
		return res, err
	}
	*dst = *s
	return res, nil
}
