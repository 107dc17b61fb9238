package report

import (
	"compress/gzip"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"pdw/internal/core"
)

// WriteCSV writes the result set with a ';' delimiter and decimal-comma
// numerics, header row first.
func WriteCSV(rs core.ResultSet, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("export csv %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	w.Comma = ';'
	if err := w.Write(rs.Columns); err != nil {
		return fmt.Errorf("export csv %s: %w", path, err)
	}
	record := make([]string, len(rs.Columns))
	for _, row := range rs.Rows {
		for i, v := range row {
			text := v.String()
			if v.Kind == core.ValueFloat {
				text = strings.ReplaceAll(text, ".", ",")
			}
			record[i] = text
		}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("export csv %s: %w", path, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("export csv %s: %w", path, err)
	}
	return nil
}

type jsonResultSet struct {
	Columns []string `json:"columns"`
	Rows    [][]any  `json:"rows"`
}

// WriteJSON writes the result set as a columns/rows document with
// native JSON types per cell.
func WriteJSON(rs core.ResultSet, path string) error {
	doc := jsonResultSet{Columns: rs.Columns, Rows: make([][]any, len(rs.Rows))}
	for i, row := range rs.Rows {
		cells := make([]any, len(row))
		for j, v := range row {
			switch v.Kind {
			case core.ValueInt:
				cells[j] = v.Int
			case core.ValueFloat:
				cells[j] = v.Float
			case core.ValueText:
				cells[j] = v.Text
			default:
				cells[j] = nil
			}
		}
		doc.Rows[i] = cells
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("export json %s: %w", path, err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("export json %s: %w", path, err)
	}
	return nil
}

var xmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&apos;",
)

// WriteXML writes the result set as <data><item><colN> rows, cells
// positionally numbered from 1. Only the five XML metacharacters are
// escaped.
func WriteXML(rs core.ResultSet, path string) error {
	var b strings.Builder
	b.WriteString("<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n<data>\n")
	for _, row := range rs.Rows {
		b.WriteString("   <item>\n")
		for i, v := range row {
			fmt.Fprintf(&b, "      <col%d>%s</col%d>\n", i+1, xmlEscaper.Replace(v.String()), i+1)
		}
		b.WriteString("   </item>\n")
	}
	b.WriteString("</data>\n")
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("export xml %s: %w", path, err)
	}
	return nil
}

// Compress gzips the file at path into path.gz and removes the
// original. Compressing an already-removed file is not retried.
func Compress(path string) (string, error) {
	in, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("compress %s: %w", path, err)
	}

	compressed := path + ".gz"
	out, err := os.Create(compressed)
	if err != nil {
		in.Close()
		return "", fmt.Errorf("compress %s: %w", path, err)
	}
	zw := gzip.NewWriter(out)
	if _, err := io.Copy(zw, in); err != nil {
		in.Close()
		out.Close()
		return "", fmt.Errorf("compress %s: %w", path, err)
	}
	in.Close()
	if err := zw.Close(); err != nil {
		out.Close()
		return "", fmt.Errorf("compress %s: %w", path, err)
	}
	if err := out.Close(); err != nil {
		return "", fmt.Errorf("compress %s: %w", path, err)
	}
	if err := os.Remove(path); err != nil {
		return "", fmt.Errorf("compress %s: remove original: %w", path, err)
	}
	return compressed, nil
}
