package importer

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

func init() {
	Register(&jsonlAdapter{})
}

type jsonlAdapter struct{}

func (a *jsonlAdapter) ID() string { return "jsonl" }
func (a *jsonlAdapter) Description() string {
	return `Line-delimited JSON answer sheets, one {"question","answer"} object per line`
}

type jsonlRow struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

func (a *jsonlAdapter) Import(ctx context.Context, spec SheetSpec, ingest IngestFunc) (Stats, error) {
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

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)

	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		stats.Rows++

		var row jsonlRow
		if err := json.Unmarshal([]byte(line), &row); err != nil {
			stats.Rejected++
			continue
		}
		question := strings.TrimSpace(row.Question)
		answer := strings.TrimSpace(row.Answer)
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
	if err := sc.Err(); err != nil {
		return stats, fmt.Errorf("read sheet: %w", err)
	}

	return stats, nil
}
