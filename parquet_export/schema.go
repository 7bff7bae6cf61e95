package parquet_export

import (
	"encoding/json"
	"fmt"
	"strings"
)

type (
	SchemaAccumulator struct {
		fields []*Field
		seen   map[string]*Field
	}

	Field struct {
		Key            string
		Name           string
		Type           string
		ConvertedType  string
		Encoding       string
		RepetitionType RepetitionType
	}

	jsonSchema struct {
		Tag    string        `json:",omitempty"`
		Fields []*jsonSchema `json:",omitempty"`
	}

	RepetitionType string
)

var (
	Optional RepetitionType = "OPTIONAL"
	Required RepetitionType = "REQUIRED"
)

func NewSchemaAccumulator() *SchemaAccumulator {
	return &SchemaAccumulator{
		seen: map[string]*Field{},
	}
}

// WriteRow adds any columns of the flat row not seen before. Null values do not fix a type.
func (sa *SchemaAccumulator) WriteRow(row map[string]any, keyOrder []string) error {
	for _, key := range keyOrder {
		val, ok := row[key]
		if !ok || val == nil {
			continue
		}
		f := fieldFor(key, val)
		if existing, exists := sa.seen[key]; exists {
			if existing.Type != f.Type {
				return fmt.Errorf("%w: column %s is both %s and %s", ErrMixedTypes, key, existing.Type, f.Type)
			}
			continue
		}
		sa.seen[key] = f
		sa.fields = append(sa.fields, f)
	}
	return nil
}

func fieldFor(key string, val any) *Field {
	f := &Field{
		Key:            key,
		Name:           strings.ToUpper(key[:1]) + key[1:],
		RepetitionType: Optional,
	}
	switch val.(type) {
	case string:
		f.Type = "BYTE_ARRAY"
		f.ConvertedType = "UTF8"
		f.Encoding = "PLAIN"
	case bool:
		f.Type = "BOOLEAN"
	default:
		// numbers arrive as float64 after normalizing
		f.Type = "DOUBLE"
	}
	return f
}

func (sa *SchemaAccumulator) Len() int {
	return len(sa.fields)
}

func (sa *SchemaAccumulator) ColumnNames() []string {
	cols := make([]string, 0, len(sa.fields))
	for _, f := range sa.fields {
		cols = append(cols, f.Key)
	}
	return cols
}

// ColumnTypes returns `string`, `float` or `bool` per column, in column order
func (sa *SchemaAccumulator) ColumnTypes() []string {
	cols := make([]string, 0, len(sa.fields))
	for _, f := range sa.fields {
		switch f.Type {
		case "BYTE_ARRAY":
			cols = append(cols, "string")
		case "BOOLEAN":
			cols = append(cols, "bool")
		default:
			cols = append(cols, "float")
		}
	}
	return cols
}

func (f *Field) tag() string {
	tagArr := []string{"type=" + f.Type}
	if f.ConvertedType != "" {
		tagArr = append(tagArr, "convertedtype="+f.ConvertedType)
	}
	if f.Encoding != "" {
		tagArr = append(tagArr, "encoding="+f.Encoding)
	}
	tagArr = append(tagArr, "name="+f.Name, "repetitiontype="+string(f.RepetitionType))
	return strings.Join(tagArr, ", ")
}

// SchemaString returns the JSON schema string the parquet JSON writer expects
func (sa *SchemaAccumulator) SchemaString() (string, error) {
	root := jsonSchema{
		Tag: "name=parquet_go_root, repetitiontype=" + string(Required),
	}
	for _, f := range sa.fields {
		root.Fields = append(root.Fields, &jsonSchema{Tag: f.tag()})
	}
	b, err := json.Marshal(root)
	if err != nil {
		return "", fmt.Errorf("error in json.Marshal: %w", err)
	}
	return string(b), nil
}
