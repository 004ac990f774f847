package output

import (
	"bytes"

	"gopkg.in/yaml.v3"

	"github.com/jamesainslie/dupsweep/pkg/dupsweep/types"
)

type yamlOutput struct {
	Summary    yamlSummary     `yaml:"summary"`
	Duplicates []yamlDuplicate `yaml:"duplicates"`
	Errors     []yamlError     `yaml:"errors,omitempty"`
}

type yamlDuplicate struct {
	Path     string `yaml:"path"`
	Original string `yaml:"original"`
	Hash     string `yaml:"hash"`
	Size     string `yaml:"size"`
	Removed  bool   `yaml:"removed"`
}

type yamlError struct {
	Path  string `yaml:"path"`
	Stage string `yaml:"stage"`
	Error string `yaml:"error"`
}

type yamlSummary struct {
	Algorithm   string   `yaml:"algorithm"`
	DryRun      bool     `yaml:"dry_run"`
	Directories []string `yaml:"directories"`
	TotalFiles  int64    `yaml:"total_files"`
	Duplicates  int      `yaml:"duplicates"`
	Removed     int      `yaml:"removed"`
	Reclaimed   string   `yaml:"reclaimed"`
	Duration    string   `yaml:"duration"`
}

// YAMLFormatter writes the run summary and duplicates as YAML.
type YAMLFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *YAMLFormatter) Format(w *bytes.Buffer, r *types.RunResult) error {
	out := yamlOutput{
		Summary: yamlSummary{
			Algorithm:  r.Algorithm,
			DryRun:     r.DryRun,
			TotalFiles: r.TotalFiles,
			Duplicates: len(r.Duplicates),
			Removed:    r.Removed(),
			Reclaimed:  types.FormatSize(r.BytesReclaimed),
			Duration:   r.Elapsed.String(),
		},
		Duplicates: make([]yamlDuplicate, len(r.Duplicates)),
	}
	for _, d := range r.Directories {
		out.Summary.Directories = append(out.Summary.Directories, d.Root)
	}
	for i, d := range r.Duplicates {
		out.Duplicates[i] = yamlDuplicate{
			Path:     d.Path,
			Original: d.Original,
			Hash:     d.Hash,
			Size:     types.FormatSize(d.Size),
			Removed:  d.Removed,
		}
	}
	for _, e := range r.Errors {
		out.Errors = append(out.Errors, yamlError(e))
	}

	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(out); err != nil {
		return err
	}
	return encoder.Close()
}

func init() {
	Register("yaml", func() Formatter {
		return &YAMLFormatter{}
	})
}

var _ Formatter = (*YAMLFormatter)(nil)
