package sequence

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"gopkg.in/yaml.v3"
)

// UnmarshalYAML decodes the breaker config, accepting Go duration strings
// ("30s", "1m") for the timeout field.
func (c *CircuitBreakerConfig) UnmarshalYAML(value *yaml.Node) error {
	var raw struct {
		Enabled          bool   `yaml:"enabled"`
		FailureThreshold int    `yaml:"failure_threshold"`
		Timeout          string `yaml:"timeout"`
	}
	if err := value.Decode(&raw); err != nil {
		return err
	}

	c.Enabled = raw.Enabled
	c.FailureThreshold = raw.FailureThreshold
	if raw.Timeout != "" {
		timeout, err := time.ParseDuration(raw.Timeout)
		if err != nil {
			return fmt.Errorf("invalid circuit breaker timeout %q: %w", raw.Timeout, err)
		}
		c.Timeout = timeout
	}
	return nil
}

// sequenceFile is the YAML document shape: a catalog of sequences, or a
// single sequence at the document root.
type sequenceFile struct {
	Sequences []*ToolSequence `yaml:"sequences"`
}

// LoadFile parses and validates sequence definitions from a YAML file.
func LoadFile(path string) ([]*ToolSequence, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read sequence file %s: %w", path, err)
	}
	seqs, err := parseSequences(data)
	if err != nil {
		return nil, fmt.Errorf("parse sequence file %s: %w", path, err)
	}
	return seqs, nil
}

// LoadDir parses and validates sequence definitions from every .yaml/.yml
// file in a directory, in lexical order.
func LoadDir(dir string) ([]*ToolSequence, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read sequence dir %s: %w", dir, err)
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch filepath.Ext(entry.Name()) {
		case ".yaml", ".yml":
			paths = append(paths, filepath.Join(dir, entry.Name()))
		}
	}
	sort.Strings(paths)

	var seqs []*ToolSequence
	for _, path := range paths {
		loaded, err := LoadFile(path)
		if err != nil {
			return nil, err
		}
		seqs = append(seqs, loaded...)
	}
	return seqs, nil
}

// RegisterFromFile loads a YAML file and registers every definition in it.
func (e *Executor) RegisterFromFile(path string) error {
	seqs, err := LoadFile(path)
	if err != nil {
		return err
	}
	for _, seq := range seqs {
		if err := e.RegisterSequence(seq); err != nil {
			return err
		}
	}
	return nil
}

func parseSequences(data []byte) ([]*ToolSequence, error) {
	var file sequenceFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, err
	}

	seqs := file.Sequences
	if len(seqs) == 0 {
		var single ToolSequence
		if err := yaml.Unmarshal(data, &single); err != nil {
			return nil, err
		}
		if single.ID == "" {
			return nil, fmt.Errorf("no sequences found in document")
		}
		seqs = []*ToolSequence{&single}
	}

	for _, seq := range seqs {
		if err := seq.Validate(); err != nil {
			return nil, err
		}
	}
	return seqs, nil
}
