package importer

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/transform"
)

func init() {
	Register(&csvAdapter{})
}

type csvAdapter struct{}

func (a *csvAdapter) ID() string { return "csv" }
func (a *csvAdapter) Description() string {
	return "Delimited answer sheets (CSV/TSV), with header or index column selection and non-UTF-8 transcoding"
}

func (a *csvAdapter) Import(ctx context.Context, spec SheetSpec, ingest IngestFunc) (Stats, error) {
	var stats Stats

	path, cleanup, err := openSource(ctx, spec.Source)
	if err != nil {
		return stats, err
	}
	defer cleanup()

	f, err := os.Open(path)
	if err != nil {
		return stats, fmt.Errorf("open sheet: %w", err)
	}
	defer f.Close()

	// Transcode non-UTF-8 encodings declared in the spec.
	var reader io.Reader = f
	if enc := spec.CSV.Encoding; !isUTF8(enc) {
		e, err := htmlindex.Get(enc)
		if err != nil {
			return stats, fmt.Errorf("unsupported encoding %q: %w", enc, err)
		}
		reader = transform.NewReader(f, e.NewDecoder())
	}

	r := csv.NewReader(reader)
	if delim := spec.CSV.Delimiter; delim != "" {
		r.Comma = []rune(delim)[0]
	}
	r.LazyQuotes = true
	r.TrimLeadingSpace = true
	r.FieldsPerRecord = -1

	qIdx, aIdx := spec.CSV.QuestionIndex, spec.CSV.AnswerIndex
	if spec.CSV.HasHeader {
		header, err := r.Read()
		if err != nil {
			return stats, fmt.Errorf("read header: %w", err)
		}
		for i := range header {
			header[i] = strings.TrimSpace(header[i])
		}
		if qIdx, err = resolveColumn(header, spec.CSV.QuestionColumn, qIdx); err != nil {
			return stats, err
		}
		if aIdx, err = resolveColumn(header, spec.CSV.AnswerColumn, aIdx); err != nil {
			return stats, err
		}
	}

	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return stats, fmt.Errorf("read row: %w", err)
		}
		stats.Rows++

		if qIdx >= len(record) || aIdx >= len(record) {
			stats.Rejected++
			continue
		}
		question := strings.TrimSpace(record[qIdx])
		answer := strings.TrimSpace(record[aIdx])
		if question == "" || answer == "" {
			stats.Rejected++
			continue
		}

		outcome, err := ingest(ctx, question, answer)
		if err != nil {
			return stats, fmt.Errorf("ingest row %d: %w", stats.Rows, err)
		}
		stats.count(outcome)
	}

	return stats, nil
}

// resolveColumn maps a header column name to its index, falling back to the
// configured index when no name is given.
func resolveColumn(header []string, name string, fallback int) (int, error) {
	if name == "" {
		return fallback, nil
	}
	for i, h := range header {
		if strings.EqualFold(h, name) {
			return i, nil
		}
	}
	return 0, fmt.Errorf("column %q not found in header %v", name, header)
}
