package report

import (
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/KaramelBytes/fraudeda-cli/internal/utils"
	"gopkg.in/yaml.v3"
)

// Format is an output document format.
type Format string

const (
	FormatXLSX     Format = "xlsx"
	FormatMarkdown Format = "md"
	FormatJSON     Format = "json"
	FormatYAML     Format = "yaml"
)

// Formats lists the supported formats.
var Formats = []Format{FormatXLSX, FormatMarkdown, FormatJSON, FormatYAML}

// ParseFormat accepts a format name or a common alias.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), ".")) {
	case "xlsx", "excel":
		return FormatXLSX, nil
	case "md", "markdown":
		return FormatMarkdown, nil
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("unsupported format %q (want xlsx, md, json or yaml)", s)
}

// FormatForPath picks a format from a file extension.
func FormatForPath(path string) (Format, bool) {
	f, err := ParseFormat(filepath.Ext(path))
	return f, err == nil
}

// Ext is the file extension for the format.
func (f Format) Ext() string { return "." + string(f) }

// Binary reports whether the format is unsuitable for a terminal.
func (f Format) Binary() bool { return f == FormatXLSX }

// JSON encodes the report as indented JSON.
func (r *Report) JSON() ([]byte, error) {
	return utils.PrettyJSON(r)
}

// YAML encodes the report as YAML.
func (r *Report) YAML() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(r); err != nil {
		return nil, fmt.Errorf("marshal yaml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("marshal yaml: %w", err)
	}
	return buf.Bytes(), nil
}

// Encode renders the report in the given format.
func (r *Report) Encode(f Format) ([]byte, error) {
	switch f {
	case FormatXLSX:
		var buf bytes.Buffer
		if err := r.WriteXLSX(&buf); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case FormatMarkdown:
		return []byte(r.Markdown()), nil
	case FormatJSON:
		return r.JSON()
	case FormatYAML:
		return r.YAML()
	}
	return nil, fmt.Errorf("unsupported format %q", f)
}

// Write renders the report to w.
func (r *Report) Write(w io.Writer, f Format) error {
	b, err := r.Encode(f)
	if err != nil {
		return err
	}
	_, err = w.Write(b)
	return err
}

// Save renders the report to path through a temp file and rename.
func (r *Report) Save(path string, f Format) error {
	b, err := r.Encode(f)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := utils.EnsureDir(dir); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}
	return utils.SafeWriteFile(path, b)
}
