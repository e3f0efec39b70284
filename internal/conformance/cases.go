package conformance

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"gopkg.in/yaml.v3"
)

//go:embed cases.cue
var caseSchema string

// caseFile mirrors the YAML layout. Pointers distinguish an absent field from
// an empty one; the json tags are the field names the CUE schema sees.
type caseFile struct {
	Cases []caseEntry `yaml:"cases" json:"cases"`
}

type caseEntry struct {
	Name          string  `yaml:"name" json:"name,omitempty"`
	Type          string  `yaml:"type" json:"type,omitempty"`
	Format        string  `yaml:"format" json:"format,omitempty"`
	Input         *string `yaml:"input" json:"input,omitempty"`
	ExpectSuccess *bool   `yaml:"expect_success" json:"expect_success,omitempty"`
	Parsed        *string `yaml:"parsed" json:"parsed,omitempty"`
	Leftover      *string `yaml:"leftover" json:"leftover,omitempty"`
}

// SchemaError reports a case file that does not satisfy the case schema.
type SchemaError struct {
	Path     string
	Problems []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("%s: invalid case file: %s", e.Path, strings.Join(e.Problems, "; "))
}

// LoadCases reads a YAML case file. Unknown fields are rejected, the file is
// validated against the embedded schema, and every type tag is resolved, so
// a returned corpus never fails validation at run time.
func LoadCases(path string) ([]TestCase, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read case file: %w", err)
	}
	return ParseCases(path, data)
}

// ParseCases is LoadCases over in-memory data; name is used in errors.
func ParseCases(name string, data []byte) ([]TestCase, error) {
	var file caseFile
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&file); err != nil {
		return nil, fmt.Errorf("%s: failed to parse YAML: %w", name, err)
	}

	if err := validateCaseFile(name, file); err != nil {
		return nil, err
	}

	cases := make([]TestCase, 0, len(file.Cases))
	for i, entry := range file.Cases {
		tc, err := NewTestCase(entry.Name, entry.Type, entry.Format, *entry.Input,
			*entry.ExpectSuccess, *entry.Parsed, *entry.Leftover)
		if err != nil {
			return nil, fmt.Errorf("%s: cases[%d]: %w", name, i, err)
		}
		cases = append(cases, tc)
	}
	return cases, nil
}

func validateCaseFile(name string, file caseFile) error {
	ctx := cuecontext.New()
	schema := ctx.CompileString(caseSchema, cue.Filename("cases.cue"))
	if err := schema.Err(); err != nil {
		return fmt.Errorf("compile case schema: %w", err)
	}

	value := schema.LookupPath(cue.ParsePath("#CaseFile")).Unify(ctx.Encode(file))
	err := value.Validate(cue.Concrete(true))
	if err == nil {
		return nil
	}

	var problems []string
	for _, e := range cueerrors.Errors(err) {
		problems = append(problems, e.Error())
	}
	if len(problems) == 0 {
		problems = append(problems, err.Error())
	}
	return &SchemaError{Path: name, Problems: problems}
}

// IsSchemaError reports whether err came from case schema validation.
func IsSchemaError(err error) bool {
	var se *SchemaError
	return errors.As(err, &se)
}
