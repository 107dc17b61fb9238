// Package report renders stored query results into the report workbook
// and the flat-file exports.
package report

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Query is one templated statement and the worksheet it renders into.
// Both fields may carry {variable} placeholders.
type Query struct {
	SQL       string `yaml:"sql"`
	SheetName string `yaml:"sheet_name"`
}

// Templates groups the queries of the report workbook. The pivot group
// is rendered only when pivot generation ran; the standard group always.
type Templates struct {
	PivotQueries    []Query `yaml:"queries_pivot"`
	StandardQueries []Query `yaml:"queries_standard"`
}

// LoadTemplates reads and parses the YAML query file.
func LoadTemplates(path string) (Templates, error) {
	var t Templates
	data, err := os.ReadFile(path)
	if err != nil {
		return t, fmt.Errorf("load query templates: %w", err)
	}
	if err := yaml.Unmarshal(data, &t); err != nil {
		return t, fmt.Errorf("parse query templates %s: %w", path, err)
	}
	return t, nil
}

// Substitute resolves every {name} placeholder present in vars. Unknown
// placeholders are left untouched so the resulting SQL fails loudly.
func Substitute(template string, vars map[string]string) string {
	result := template
	for name, value := range vars {
		result = strings.ReplaceAll(result, "{"+name+"}", value)
	}
	return result
}
