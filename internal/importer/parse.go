// Package importer turns externally produced task files into candidate tasks
// and reconciles them against the live collection.
package importer

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"taskManager/internal/models/task"

	"gopkg.in/yaml.v3"
)

var (
	ErrEmpty       = errors.New("import contains no tasks")
	ErrMalformed   = errors.New("malformed import data")
	ErrUnsupported = errors.New("unsupported import format")
)

type Format string

const (
	FormatAuto Format = ""
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatCSV  Format = "csv"
)

func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatAuto, FormatJSON, FormatYAML, FormatCSV:
		return f, nil
	case "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupported, s)
	}
}

// Parse decodes data into normalized candidates. Entries that cannot be turned
// into a task are dropped; a batch that decodes to nothing is ErrEmpty.
func Parse(data []byte, format Format) ([]task.Task, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, ErrEmpty
	}
	if format == FormatAuto {
		format = sniff(data)
	}

	var (
		records []any
		err     error
	)
	switch format {
	case FormatJSON:
		records, err = decodeJSON(data)
	case FormatYAML:
		records, err = decodeYAML(data)
	case FormatCSV:
		records, err = decodeCSV(data)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupported, format)
	}
	if err != nil {
		return nil, err
	}

	candidates := normalizeAll(records)
	if len(candidates) == 0 {
		return nil, ErrEmpty
	}
	return candidates, nil
}

func sniff(data []byte) Format {
	trimmed := bytes.TrimSpace(data)
	switch trimmed[0] {
	case '[', '{':
		return FormatJSON
	}
	first, _, _ := bytes.Cut(trimmed, []byte("\n"))
	if bytes.Contains(first, []byte(",")) && !bytes.Contains(first, []byte(":")) {
		return FormatCSV
	}
	return FormatYAML
}

func decodeJSON(data []byte) ([]any, error) {
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return unwrap(doc)
}

func decodeYAML(data []byte) ([]any, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return unwrap(doc)
}

// unwrap accepts a bare list or an object holding a tasks list.
func unwrap(doc any) ([]any, error) {
	switch v := doc.(type) {
	case []any:
		return v, nil
	case map[string]any:
		list, ok := v["tasks"].([]any)
		if !ok {
			return nil, fmt.Errorf("%w: expected a list or an object with a tasks list", ErrMalformed)
		}
		return list, nil
	case nil:
		return nil, ErrEmpty
	default:
		return nil, fmt.Errorf("%w: unexpected top-level %T", ErrMalformed, doc)
	}
}

// decodeCSV reassembles rows into records keyed by the header row.
func decodeCSV(data []byte) ([]any, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrEmpty
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(strings.TrimPrefix(header[i], "\ufeff"))
	}

	var records []any
	for {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		rec := make(map[string]any, len(header))
		for i, col := range header {
			if i < len(row) && col != "" {
				rec[col] = row[i]
			}
		}
		records = append(records, rec)
	}
	return records, nil
}
