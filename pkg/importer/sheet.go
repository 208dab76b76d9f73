package importer

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// SheetSpec describes one answer sheet: where it lives, which adapter parses
// it, and the format details the adapter needs.
type SheetSpec struct {
	Name    string  `yaml:"name"`
	Adapter string  `yaml:"adapter"` // "csv" or "jsonl"; default "csv"
	Source  string  `yaml:"source"`  // local path or http(s) URL
	CSV     CSVSpec `yaml:"csv"`
}

// CSVSpec holds the delimited-file knobs. With a header, questions and
// answers are located by column name; without one, by zero-based index.
type CSVSpec struct {
	Delimiter      string `yaml:"delimiter"` // single rune; default ","
	HasHeader      bool   `yaml:"has_header"`
	QuestionColumn string `yaml:"question_column"`
	AnswerColumn   string `yaml:"answer_column"`
	QuestionIndex  int    `yaml:"question_index"`
	AnswerIndex    int    `yaml:"answer_index"`
	Encoding       string `yaml:"encoding"` // htmlindex name; default UTF-8
}

// LoadSheetSpec reads and validates a sheet spec from a YAML file.
func LoadSheetSpec(path string) (*SheetSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read sheet spec: %w", err)
	}

	var spec SheetSpec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("parse sheet spec %s: %w", path, err)
	}

	if spec.Name == "" {
		spec.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	if spec.Adapter == "" {
		spec.Adapter = "csv"
	}
	if spec.Source == "" {
		return nil, fmt.Errorf("sheet spec %s: source is required", path)
	}
	// Relative local sources resolve against the spec file's directory.
	if !isURL(spec.Source) && !filepath.IsAbs(spec.Source) {
		spec.Source = filepath.Join(filepath.Dir(path), spec.Source)
	}
	if !spec.CSV.HasHeader && spec.CSV.QuestionIndex == 0 && spec.CSV.AnswerIndex == 0 {
		spec.CSV.AnswerIndex = 1
	}

	return &spec, nil
}

// LoadSheetSpecs loads every *.yaml sheet spec in a directory, sorted by file
// name so runs are reproducible.
func LoadSheetSpecs(dir string) ([]*SheetSpec, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read sheet dir: %w", err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := filepath.Ext(e.Name())
		if ext == ".yaml" || ext == ".yml" {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	specs := make([]*SheetSpec, 0, len(names))
	for _, name := range names {
		spec, err := LoadSheetSpec(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}
		specs = append(specs, spec)
	}
	return specs, nil
}
