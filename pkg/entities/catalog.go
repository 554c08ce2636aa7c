// Package entities holds the canonical entity field catalog: which SQL
// fields carry named-entity literals, which reference table backs each one,
// and how a resolved record's locale maps to a concrete column.
package entities

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/jinzhu/inflection"
	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var catalogYAML []byte

// Field describes one canonical entity field.
type Field struct {
	// Name is the column name matched in generated SQL, e.g. PERSON_NAME.
	Name string `yaml:"name"`
	// Kind is the entity kind, e.g. "person". It prefixes vector record
	// ids and derives the vector collection name.
	Kind string `yaml:"kind"`
	// Table is the canonical reference table.
	Table string `yaml:"table"`
	// IDColumn is the reference table's primary key column.
	IDColumn string `yaml:"id_column"`
	// RankColumn orders ties on exact lookups; empty when the table has
	// no ranking column.
	RankColumn string `yaml:"rank_column"`
	// Columns maps a record locale to the column substituted into SQL.
	// Empty means the field always resolves to IDColumn.
	Columns map[string]string `yaml:"columns"`
}

// Collection returns the vector store collection for this field's kind.
func (f Field) Collection() string {
	return inflection.Plural(f.Kind)
}

// ColumnFor picks the concrete reference column for a record locale.
// Unknown locales fall back to the "original" column; fields without a
// locale map resolve to the id column regardless of locale.
func (f Field) ColumnFor(locale string) string {
	if len(f.Columns) == 0 {
		return f.IDColumn
	}
	if col, ok := f.Columns[locale]; ok {
		return col
	}
	return f.Columns["original"]
}

// Catalog is the ordered set of canonical entity fields.
type Catalog struct {
	fields []Field
	byName map[string]Field
}

// Load parses the embedded catalog.
func Load() (*Catalog, error) {
	var doc struct {
		Fields []Field `yaml:"fields"`
	}
	if err := yaml.Unmarshal(catalogYAML, &doc); err != nil {
		return nil, fmt.Errorf("parse entity catalog: %w", err)
	}
	if len(doc.Fields) == 0 {
		return nil, fmt.Errorf("entity catalog is empty")
	}

	byName := make(map[string]Field, len(doc.Fields))
	for _, f := range doc.Fields {
		if f.Name == "" || f.Kind == "" || f.Table == "" || f.IDColumn == "" {
			return nil, fmt.Errorf("entity catalog: incomplete field %+v", f)
		}
		if _, dup := byName[f.Name]; dup {
			return nil, fmt.Errorf("entity catalog: duplicate field %s", f.Name)
		}
		byName[f.Name] = f
	}

	return &Catalog{fields: doc.Fields, byName: byName}, nil
}

// Fields returns the fields in scan order.
func (c *Catalog) Fields() []Field {
	return c.fields
}

// ByName returns the field with the given SQL column name.
func (c *Catalog) ByName(name string) (Field, bool) {
	f, ok := c.byName[name]
	return f, ok
}

// DecodeRecordID splits a vector record id of the form kind_rowID_locale.
func DecodeRecordID(id string) (kind, rowID, locale string, err error) {
	parts := strings.Split(id, "_")
	if len(parts) != 3 || parts[0] == "" || parts[1] == "" || parts[2] == "" {
		return "", "", "", fmt.Errorf("malformed record id %q", id)
	}
	return parts[0], parts[1], parts[2], nil
}
