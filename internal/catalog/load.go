package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"sync"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/dotcommander/moyenne/internal/cue"
	"github.com/dotcommander/moyenne/internal/discovery"
	"github.com/dotcommander/moyenne/internal/logging"
)

//go:embed data/catalog.yaml
var defaultData []byte

// ErrInvalidCatalog wraps schema and consistency failures.
var ErrInvalidCatalog = errors.New("invalid catalog")

var defaultCatalog = sync.OnceValues(func() (*Catalog, error) {
	return Parse(defaultData, discovery.FormatYAML)
})

// Default returns a copy of the built-in program catalog.
func Default() (*Catalog, error) {
	c, err := defaultCatalog()
	if err != nil {
		return nil, fmt.Errorf("built-in catalog: %w", err)
	}
	return c.Clone(), nil
}

// Parse decodes a catalog document without schema checks.
func Parse(content []byte, format discovery.Format) (*Catalog, error) {
	c := New()
	var err error
	switch format {
	case discovery.FormatYAML:
		err = yaml.Unmarshal(content, c)
	case discovery.FormatTOML:
		err = toml.Unmarshal(content, c)
	default:
		return nil, fmt.Errorf("unsupported catalog format: %s", format)
	}
	if err != nil {
		return nil, fmt.Errorf("decoding %s catalog: %w", format, err)
	}
	if c.Years == nil {
		c.Years = make(map[string]YearEntry)
	}
	if c.Semesters == nil {
		c.Semesters = make(map[string]SemesterConfig)
	}
	return c, nil
}

// Loader validates catalog files against the embedded schema and decodes
// them.
type Loader struct {
	validator *cue.Validator

	// FollowSymlinks makes LoadDir descend into symlinked catalog files.
	FollowSymlinks bool
}

// NewLoader compiles the catalog schema.
func NewLoader() (*Loader, error) {
	v := cue.NewValidator()
	if err := v.LoadSchemas(); err != nil {
		return nil, err
	}
	return &Loader{validator: v}, nil
}

// Check runs the schema on content and returns every problem found.
func (l *Loader) Check(name string, content []byte, format discovery.Format) ([]cue.ValidationError, error) {
	return l.validator.ValidateFile(name, content, format.String())
}

// LoadBytes validates then decodes one catalog document.
func (l *Loader) LoadBytes(name string, content []byte, format discovery.Format) (*Catalog, error) {
	problems, err := l.Check(name, content, format)
	if err != nil {
		return nil, err
	}
	if len(problems) > 0 {
		msgs := make([]string, len(problems))
		for i, p := range problems {
			msgs[i] = p.String()
		}
		return nil, fmt.Errorf("%w: %s", ErrInvalidCatalog, strings.Join(msgs, "; "))
	}
	c, err := Parse(content, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return c, nil
}

// Load reads path from fsys and decodes it according to its extension.
func (l *Loader) Load(fsys fs.FS, path string) (*Catalog, error) {
	format, err := discovery.DetectFormat(path)
	if err != nil {
		return nil, err
	}
	content, err := fs.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog %s: %w", path, err)
	}
	return l.LoadBytes(path, content, format)
}

// LoadDir layers every catalog file found below root on top of base, in
// path order. The merged catalog is checked for consistency.
func (l *Loader) LoadDir(base *Catalog, root string) (*Catalog, error) {
	files, err := discovery.NewFileDiscovery(root, l.FollowSymlinks).DiscoverFiles()
	if err != nil {
		return nil, err
	}

	out := base
	for _, f := range files {
		overlay, err := l.LoadBytes(f.RelPath, f.Contents, f.Format)
		if err != nil {
			return nil, err
		}
		logging.Debugf("catalog: merged %s (%d semesters)", f.RelPath, len(overlay.Semesters))
		out = Merge(out, overlay)
	}
	if err := out.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidCatalog, err)
	}
	return out, nil
}
