// Package export renders a user's entries as JSON, CSV or Markdown.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/epikoding/dictionary/internal/model"
)

type Format string

const (
	FormatJSON     Format = "json"
	FormatCSV      Format = "csv"
	FormatMarkdown Format = "md"
)

const timeLayout = "2006-01-02 15:04"

// ParseFormat accepts json, csv, md and markdown.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "json":
		return FormatJSON, nil
	case "csv":
		return FormatCSV, nil
	case "md", "markdown":
		return FormatMarkdown, nil
	}
	return "", fmt.Errorf("invalid format %q: use json, csv, or md", s)
}

func (f Format) ContentType() string {
	switch f {
	case FormatCSV:
		return "text/csv"
	case FormatMarkdown:
		return "text/markdown"
	default:
		return "application/json"
	}
}

// Filename is the attachment name offered for owner's export.
func (f Format) Filename(owner string) string {
	return fmt.Sprintf("dictionary-%s.%s", owner, f)
}

func Write(w io.Writer, f Format, owner string, entries []model.Entry) error {
	switch f {
	case FormatJSON:
		return writeJSON(w, entries)
	case FormatCSV:
		return writeCSV(w, entries)
	case FormatMarkdown:
		return writeMarkdown(w, owner, entries)
	}
	return fmt.Errorf("unsupported format %q", f)
}

func writeJSON(w io.Writer, entries []model.Entry) error {
	if entries == nil {
		entries = []model.Entry{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(entries)
}

func writeCSV(w io.Writer, entries []model.Entry) error {
	writer := csv.NewWriter(w)

	if err := writer.Write([]string{"Word", "Meaning", "Category", "Memo", "Updated"}); err != nil {
		return err
	}
	for _, e := range entries {
		err := writer.Write([]string{
			e.Word,
			e.Meaning,
			e.CategoryName(),
			e.MemoText(),
			e.UpdatedAt.Format(timeLayout),
		})
		if err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

func writeMarkdown(w io.Writer, owner string, entries []model.Entry) error {
	var buf strings.Builder

	buf.WriteString(fmt.Sprintf("# %s's dictionary\n\n", owner))
	buf.WriteString(fmt.Sprintf("**Entries:** %d\n\n", len(entries)))

	for _, e := range entries {
		buf.WriteString(fmt.Sprintf("### %s\n\n", e.Word))
		if c := e.CategoryName(); c != "" {
			buf.WriteString(fmt.Sprintf("**Category:** %s\n\n", c))
		}
		buf.WriteString(fmt.Sprintf("**Meaning:** %s\n\n", e.Meaning))
		if m := e.MemoText(); m != "" {
			buf.WriteString(fmt.Sprintf("**Memo:** %s\n\n", m))
		}
		buf.WriteString(fmt.Sprintf("*Updated %s*\n\n", e.UpdatedAt.Format(timeLayout)))
		buf.WriteString("---\n\n")
	}

	_, err := io.WriteString(w, buf.String())
	return err
}
