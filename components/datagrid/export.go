package datagrid

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ExportFormat names a serialization produced by ExportRows.
type ExportFormat string

const (
	ExportCSV  ExportFormat = "csv"
	ExportJSON ExportFormat = "json"
	ExportYAML ExportFormat = "yaml"
)

// ParseExportFormat resolves a user supplied format name. Empty means CSV.
func ParseExportFormat(value string) (ExportFormat, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "csv":
		return ExportCSV, nil
	case "json":
		return ExportJSON, nil
	case "yaml", "yml":
		return ExportYAML, nil
	default:
		return "", fmt.Errorf("datagrid: unsupported export format %q", value)
	}
}

// ContentType returns the MIME type for the format.
func (f ExportFormat) ContentType() string {
	switch f {
	case ExportJSON:
		return "application/json"
	case ExportYAML:
		return "application/yaml"
	default:
		return "text/csv; charset=utf-8"
	}
}

// Extension returns the file extension for the format, without the dot.
func (f ExportFormat) Extension() string {
	if f == "" {
		return string(ExportCSV)
	}
	return string(f)
}

// VisibleColumns returns the non-hidden columns in declaration order.
func VisibleColumns(columns []Column) []Column {
	out := make([]Column, 0, len(columns))
	for _, col := range columns {
		if !col.Hidden {
			out = append(out, col)
		}
	}
	return out
}

// ExportRows serializes the visible columns of rows, in column declaration
// order. Composite values are written as their JSON string form.
func ExportRows(rows []Row, columns []Column, format ExportFormat) ([]byte, error) {
	visible := VisibleColumns(columns)
	switch format {
	case "", ExportCSV:
		return exportCSV(rows, visible)
	case ExportJSON:
		return exportJSON(rows, visible)
	case ExportYAML:
		return exportYAML(rows, visible)
	default:
		return nil, fmt.Errorf("datagrid: unsupported export format %q", format)
	}
}

func exportCSV(rows []Row, columns []Column) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	header := make([]string, len(columns))
	for i, col := range columns {
		header[i] = columnLabel(col)
	}
	if err := w.Write(header); err != nil {
		return nil, fmt.Errorf("datagrid: write csv header: %w", err)
	}
	record := make([]string, len(columns))
	for _, row := range rows {
		for i, col := range columns {
			record[i] = stringify(row[col.Key])
		}
		if err := w.Write(record); err != nil {
			return nil, fmt.Errorf("datagrid: write csv row %s: %w", row.ID(), err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("datagrid: flush csv: %w", err)
	}
	return buf.Bytes(), nil
}

// exportJSON writes objects by hand so keys keep column order.
func exportJSON(rows []Row, columns []Column) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, row := range rows {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteByte('{')
		for j, col := range columns {
			if j > 0 {
				buf.WriteByte(',')
			}
			key, err := json.Marshal(col.Key)
			if err != nil {
				return nil, err
			}
			value, err := json.Marshal(flatValue(row[col.Key]))
			if err != nil {
				return nil, fmt.Errorf("datagrid: encode %s of row %s: %w", col.Key, row.ID(), err)
			}
			buf.Write(key)
			buf.WriteByte(':')
			buf.Write(value)
		}
		buf.WriteByte('}')
	}
	buf.WriteByte(']')
	return buf.Bytes(), nil
}

func exportYAML(rows []Row, columns []Column) ([]byte, error) {
	doc := &yaml.Node{Kind: yaml.SequenceNode}
	for _, row := range rows {
		item := &yaml.Node{Kind: yaml.MappingNode}
		for _, col := range columns {
			var value yaml.Node
			if err := value.Encode(flatValue(row[col.Key])); err != nil {
				return nil, fmt.Errorf("datagrid: encode %s of row %s: %w", col.Key, row.ID(), err)
			}
			item.Content = append(item.Content,
				&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: col.Key},
				&value,
			)
		}
		doc.Content = append(doc.Content, item)
	}
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("datagrid: write yaml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("datagrid: close yaml: %w", err)
	}
	return buf.Bytes(), nil
}

// flatValue keeps primitives as they are and stringifies everything else.
func flatValue(v any) any {
	switch val := v.(type) {
	case nil:
		return ""
	case string, bool:
		return val
	case time.Time:
		return stringify(val)
	}
	if f, ok := numeric(v); ok {
		return f
	}
	return stringify(v)
}

func columnLabel(col Column) string {
	if col.Label != "" {
		return col.Label
	}
	return col.Key
}
