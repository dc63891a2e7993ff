package report

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// Document is the top-level YAML report.
type Document struct {
	Functions []Summary `yaml:"functions"`
	Totals    struct {
		Functions int `yaml:"functions"`
		Variables int `yaml:"variables"`
		Trusted   int `yaml:"trusted"`
		Dangling  int `yaml:"dangling"`
		Warnings  int `yaml:"warnings"`
	} `yaml:"totals"`
}

// WriteYAML writes summaries as one YAML document.
func WriteYAML(w io.Writer, summaries []Summary) error {
	var doc Document
	doc.Functions = summaries
	if doc.Functions == nil {
		doc.Functions = []Summary{}
	}
	t := Tally(summaries)
	doc.Totals.Functions = t.Functions
	doc.Totals.Variables = t.Variables
	doc.Totals.Trusted = t.Trusted
	doc.Totals.Dangling = t.Dangling
	doc.Totals.Warnings = t.Warnings

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(&doc); err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	return enc.Close()
}

// ReadYAML decodes a report written by WriteYAML.
func ReadYAML(r io.Reader) (*Document, error) {
	var doc Document
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode report: %w", err)
	}
	return &doc, nil
}
