// Package appconfig describes the jtlsum settings and validates config files.
package appconfig

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultConfigPath is the config file read when --config is not given.
	DefaultConfigPath = "jtlsum.json"
	// DefaultOutputDir receives results_summary.csv when no directory is set.
	DefaultOutputDir = "."
)

// Config represents the merged jtlsum settings (flags > config file > defaults).
type Config struct {
	OutputDir      string `json:"outputDir"`
	Debug          bool   `json:"debug"`
	LogFile        string `json:"logFile,omitempty"`
	Print          bool   `json:"print"`
	AnalysisOutput string `json:"analysisOutput,omitempty"`
	PromOutput     string `json:"promOutput,omitempty"`
	ConfigPath     string `json:"-"`
}

// OutputDirPath returns the output directory, applying the default if not set.
func (c Config) OutputDirPath() string {
	if c.OutputDir != "" {
		return c.OutputDir
	}
	return DefaultOutputDir
}

// LogFilePath returns the trimmed log file path; empty means no log file.
func (c Config) LogFilePath() string {
	return strings.TrimSpace(c.LogFile)
}

// Schema is the JSON schema every config file must satisfy.
func Schema() map[string]any {
	str := map[string]any{"type": "string"}
	boolean := map[string]any{"type": "boolean"}
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"outputDir":      str,
			"debug":          boolean,
			"logFile":        str,
			"print":          boolean,
			"analysisOutput": str,
			"promOutput":     str,
		},
	}
}

// ValidateFile decodes a JSON or YAML config file and checks it against Schema.
func ValidateFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("could not read config file %q: %w", path, err)
	}

	doc, err := decode(path, raw)
	if err != nil {
		return fmt.Errorf("could not parse config file %q: %w", path, err)
	}

	result, err := gojsonschema.Validate(gojsonschema.NewGoLoader(Schema()), gojsonschema.NewGoLoader(doc))
	if err != nil {
		return fmt.Errorf("schema validation error: %w", err)
	}
	if result.Valid() {
		return nil
	}

	var errs []string
	for _, desc := range result.Errors() {
		errs = append(errs, desc.String())
	}
	return fmt.Errorf("config file %q is invalid: %s", path, strings.Join(errs, ", "))
}

func decode(path string, raw []byte) (any, error) {
	var doc any
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(raw, &doc); err != nil {
			return nil, err
		}
		if doc == nil {
			doc = map[string]any{}
		}
	default:
		if err := json.Unmarshal(raw, &doc); err != nil {
			return nil, err
		}
	}
	return doc, nil
}
