package cue

import (
	"embed"
	"fmt"
	"path"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"github.com/pelletier/go-toml/v2"
	yamlv3 "gopkg.in/yaml.v3"
)

//go:embed schemas/*.cue
var schemaFS embed.FS

// ValidationError represents a validation error
type ValidationError struct {
	File     string
	Path     string // dotted path inside the document, e.g. semesters.1lse1.subjects.0.formula
	Message  string
	Severity string // error, warning
}

func (e ValidationError) String() string {
	loc := e.File
	if e.Path != "" {
		if loc != "" {
			loc += ":"
		}
		loc += e.Path
	}
	if loc == "" {
		return e.Message
	}
	return loc + ": " + e.Message
}

// Validator handles CUE validation
type Validator struct {
	ctx     *cue.Context
	schemas map[string]cue.Value
}

// NewValidator creates a new Validator instance
func NewValidator() *Validator {
	return &Validator{
		ctx:     cuecontext.New(),
		schemas: make(map[string]cue.Value),
	}
}

// LoadSchemas compiles every embedded schema file.
func (v *Validator) LoadSchemas() error {
	entries, err := schemaFS.ReadDir("schemas")
	if err != nil {
		return fmt.Errorf("reading embedded schemas: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() || path.Ext(entry.Name()) != ".cue" {
			continue
		}
		content, err := schemaFS.ReadFile(path.Join("schemas", entry.Name()))
		if err != nil {
			return fmt.Errorf("reading schema %s: %w", entry.Name(), err)
		}

		inst := v.ctx.CompileBytes(content, cue.Filename(entry.Name()))
		if instErr := inst.Err(); instErr != nil {
			return fmt.Errorf("compiling schema %s: %w", entry.Name(), instErr)
		}

		// catalog.cue -> catalog
		v.schemas[strings.TrimSuffix(entry.Name(), ".cue")] = inst.Value()
	}

	if len(v.schemas) == 0 {
		return fmt.Errorf("no CUE schemas found")
	}
	return nil
}

// ValidateCatalog validates a decoded catalog document against #Catalog.
func (v *Validator) ValidateCatalog(data map[string]any) ([]ValidationError, error) {
	schema, ok := v.schemas["catalog"]
	if !ok {
		return nil, fmt.Errorf("catalog schema not loaded")
	}
	return v.validateAgainstSchema(schema, data, "catalog")
}

// validateAgainstSchema unifies data with the #<Name> definition of schema.
func (v *Validator) validateAgainstSchema(schema cue.Value, data map[string]any, schemaType string) ([]ValidationError, error) {
	dataValue := v.ctx.Encode(data)
	if encErr := dataValue.Err(); encErr != nil {
		return nil, fmt.Errorf("error encoding data: %w", encErr)
	}

	defPath := cue.ParsePath("#" + strings.ToUpper(schemaType[:1]) + schemaType[1:])
	def := schema.LookupPath(defPath)
	if !def.Exists() {
		return nil, fmt.Errorf("schema %s has no %s definition", schemaType, defPath)
	}

	unified := def.Unify(dataValue)
	if err := unified.Err(); err != nil {
		return extractErrors(err), nil
	}
	// Concreteness catches required fields that are missing.
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return extractErrors(err), nil
	}
	return nil, nil
}

// extractErrors flattens a CUE error list into one entry per failure.
func extractErrors(err error) []ValidationError {
	var out []ValidationError
	for _, e := range cueerrors.Errors(err) {
		format, args := e.Msg()
		out = append(out, ValidationError{
			Path:     strings.Join(e.Path(), "."),
			Message:  fmt.Sprintf(format, args...),
			Severity: "error",
		})
	}
	if len(out) == 0 {
		out = append(out, ValidationError{Message: err.Error(), Severity: "error"})
	}
	return out
}

// Decode parses a catalog document in the given format (yaml or toml) into
// a generic map suitable for schema validation.
func Decode(content []byte, format string) (map[string]any, error) {
	data := make(map[string]any)
	switch format {
	case "yaml":
		if err := yamlv3.Unmarshal(content, &data); err != nil {
			return nil, fmt.Errorf("error parsing YAML: %w", err)
		}
	case "toml":
		if err := toml.Unmarshal(content, &data); err != nil {
			return nil, fmt.Errorf("error parsing TOML: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown catalog format: %s", format)
	}
	if data == nil {
		data = make(map[string]any)
	}
	return data, nil
}

// ValidateFile decodes and validates one catalog file. Parse failures are
// reported as validation errors so a batch run can continue.
func (v *Validator) ValidateFile(file string, content []byte, format string) ([]ValidationError, error) {
	data, err := Decode(content, format)
	if err != nil {
		return []ValidationError{{File: file, Message: err.Error(), Severity: "error"}}, nil
	}

	errs, err := v.ValidateCatalog(data)
	if err != nil {
		return nil, err
	}
	for i := range errs {
		errs[i].File = file
	}
	return errs, nil
}
