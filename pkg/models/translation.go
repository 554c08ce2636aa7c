package models

import "sort"

// ExtractionResult is the entity-extraction output: variable name → literal
// value, plus the question with each literal replaced by {{variable}}.
type ExtractionResult struct {
	Variables          map[string]string
	AnonymizedQuestion string
}

// VariableNames returns the entity-variable names in deterministic order,
// excluding the reserved "question" key.
func (r *ExtractionResult) VariableNames() []string {
	names := make([]string, 0, len(r.Variables))
	for name := range r.Variables {
		if name == "question" {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// GenerationResult is the SQL-generation output. A non-empty Error marks the
// question as ambiguous: the template must not be executed.
type GenerationResult struct {
	SQLQuery      string
	Justification string
	Error         string
}

// Ambiguous reports whether generation declined to produce executable SQL.
func (r *GenerationResult) Ambiguous() bool {
	return r.Error != ""
}
