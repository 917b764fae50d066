package catalog

import (
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dotcommander/moyenne/internal/discovery"
	"github.com/dotcommander/moyenne/internal/grades"
)

func TestDefaultCatalog(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)
	require.NoError(t, c.Validate())

	assert.Equal(t, []string{"1", "2", "3"}, c.YearIDs())
	assert.Equal(t, "Première année", c.YearLabel("1"))
	assert.Len(t, c.Specializations("1"), 3)
	assert.Len(t, c.Specializations("3"), 10)

	spec, ok := c.Specialization("2", "lbi")
	require.True(t, ok)
	assert.Equal(t, "Licence Business Intelligence", spec.Name)

	key, err := NewKey("1", "lse", "1")
	require.NoError(t, err)
	subjects, err := c.Subjects(key)
	require.NoError(t, err)
	require.Len(t, subjects, 8)
	assert.Equal(t, "Principes d'économie", subjects[0].Name)
	assert.Equal(t, grades.FormulaTDExam, subjects[0].Formula)
	assert.InDelta(t, 2.5, subjects[0].Coefficient, 1e-9)
	for _, s := range subjects {
		assert.False(t, s.Inputs.Any(), "fresh subjects have no grades")
	}

	sem, ok := c.Lookup(key)
	require.True(t, ok)
	assert.InDelta(t, 15.0, sem.TotalCoefficient(), 1e-9)
}

func TestDefaultCatalogEveryFormulaKnown(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)
	for _, k := range c.Keys() {
		sem, _ := c.Lookup(k)
		for _, s := range sem.Subjects {
			assert.Truef(t, s.Formula.Valid(), "%s: %s uses %q", k, s.Name, s.Formula)
		}
	}
}

func TestDefaultReturnsCopy(t *testing.T) {
	a, err := Default()
	require.NoError(t, err)
	delete(a.Semesters, "1lse1")

	b, err := Default()
	require.NoError(t, err)
	_, ok := b.Semesters["1lse1"]
	assert.True(t, ok)
}

func TestSubjectsUnknownSemester(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)
	// Year 3 Business Intelligence has no second semester configured.
	_, err = c.Subjects(Key{Year: "3", Specialization: "lbi", Semester: "2"})
	assert.ErrorIs(t, err, ErrUnknownSemester)
}

func TestKeys(t *testing.T) {
	tests := []struct {
		in      string
		want    Key
		wantErr bool
	}{
		{"1lse1", Key{"1", "lse", "1"}, false},
		{"3lfin2", Key{"3", "lfin", "2"}, false},
		{"4lse1", Key{}, true},
		{"1lse3", Key{}, true},
		{"1LSE1", Key{}, true},
		{"", Key{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseKey(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.in, got.String())
		})
	}

	_, err := NewKey("0", "lse", "1")
	assert.Error(t, err)
	_, err = NewKey("1", "l se", "1")
	assert.Error(t, err)
	_, err = NewKey("1", "lse", "3")
	assert.Error(t, err)
}

func TestKeysSorted(t *testing.T) {
	c := New()
	for _, k := range []string{"2lse1", "1lse2", "1lbc1", "1lse1", "bogus"} {
		c.Semesters[k] = SemesterConfig{}
	}
	var got []string
	for _, k := range c.Keys() {
		got = append(got, k.String())
	}
	assert.Equal(t, []string{"1lbc1", "1lse1", "1lse2", "2lse1"}, got)
}

func TestValidate(t *testing.T) {
	c := New()
	c.Years["1"] = YearEntry{Specializations: []Specialization{{ID: "lse", Name: "LSE"}}}
	c.Semesters["1lse1"] = SemesterConfig{Subjects: []SubjectTemplate{
		{Name: "Analyse", Formula: grades.FormulaTDExam, Coefficient: 1},
		{Name: "Analyse", Formula: grades.FormulaTDExam, Coefficient: 1},
		{Name: " ", Formula: "nope", Coefficient: 0},
	}}
	c.Semesters["1xyz1"] = SemesterConfig{}
	c.Semesters["weird"] = SemesterConfig{}

	err := c.Validate()
	require.Error(t, err)
	msg := err.Error()
	assert.Contains(t, msg, `duplicate subject "Analyse"`)
	assert.Contains(t, msg, "has no name")
	assert.Contains(t, msg, "unknown formula")
	assert.Contains(t, msg, "coefficient must be positive")
	assert.Contains(t, msg, `specialization "xyz" is not offered`)
	assert.Contains(t, msg, `invalid semester key "weird"`)
}

func TestMerge(t *testing.T) {
	base := New()
	base.Years["1"] = YearEntry{Label: "Première année", Specializations: []Specialization{
		{ID: "lse", Name: "LSE"},
	}}
	base.Semesters["1lse1"] = SemesterConfig{Subjects: []SubjectTemplate{
		{Name: "Analyse", Formula: grades.FormulaTDExam, Coefficient: 2},
	}}

	overlay := New()
	overlay.Years["1"] = YearEntry{Specializations: []Specialization{
		{ID: "lse", Name: "Licence Sciences Économiques"},
		{ID: "bio", Name: "Biologie"},
	}}
	overlay.Semesters["1bio1"] = SemesterConfig{Subjects: []SubjectTemplate{
		{Name: "Anglais", Formula: grades.FormulaTDExam, Coefficient: 1, OptionalGroup: "langue"},
		{Name: "Français", Formula: grades.FormulaTDExam, Coefficient: 1, OptionalGroup: "langue"},
	}}

	got := Merge(base, overlay)
	require.NoError(t, got.Validate())
	assert.Equal(t, "Première année", got.YearLabel("1"))
	assert.Equal(t, []Specialization{
		{ID: "lse", Name: "Licence Sciences Économiques"},
		{ID: "bio", Name: "Biologie"},
	}, got.Specializations("1"))
	assert.Len(t, got.Semesters, 2)

	// base untouched
	assert.Equal(t, "LSE", base.Years["1"].Specializations[0].Name)
	assert.Len(t, base.Semesters, 1)
}

func TestLoaderLoad(t *testing.T) {
	l, err := NewLoader()
	require.NoError(t, err)

	fsys := fstest.MapFS{
		"ok.catalog.yaml": {Data: []byte(`semesters:
  1lse1:
    subjects:
      - name: Analyse
        formula: td_exam
        coefficient: 2.5
`)},
		"ok.catalog.toml": {Data: []byte(`[[semesters.1lse2.subjects]]
name = "Algèbre"
formula = "ds1_exam"
coefficient = 1
`)},
		"bad.catalog.yaml": {Data: []byte(`semesters:
  1lse1:
    subjects:
      - name: Analyse
        formula: td_only
        coefficient: 2.5
`)},
		"notes.txt": {Data: []byte("hello")},
	}

	c, err := l.Load(fsys, "ok.catalog.yaml")
	require.NoError(t, err)
	assert.Equal(t, "Analyse", c.Semesters["1lse1"].Subjects[0].Name)

	c, err = l.Load(fsys, "ok.catalog.toml")
	require.NoError(t, err)
	assert.Equal(t, grades.FormulaDS1Exam, c.Semesters["1lse2"].Subjects[0].Formula)

	_, err = l.Load(fsys, "bad.catalog.yaml")
	assert.ErrorIs(t, err, ErrInvalidCatalog)

	_, err = l.Load(fsys, "notes.txt")
	assert.Error(t, err)

	_, err = l.Load(fsys, "missing.catalog.yaml")
	assert.Error(t, err)
}

func TestLoaderLoadDir(t *testing.T) {
	l, err := NewLoader()
	require.NoError(t, err)
	base, err := Default()
	require.NoError(t, err)

	dir := t.TempDir()
	overlay := `years:
  "3":
    specializations:
      - id: lbi
        name: Licence Business Intelligence
semesters:
  3lbi2:
    subjects:
      - name: Projet de fin d'études
        formula: td_exam
        coefficient: 3
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "lbi.catalog.yaml"), []byte(overlay), 0o644))

	merged, err := l.LoadDir(base, dir)
	require.NoError(t, err)
	subjects, err := merged.Subjects(Key{Year: "3", Specialization: "lbi", Semester: "2"})
	require.NoError(t, err)
	assert.Len(t, subjects, 1)
	assert.Len(t, merged.Specializations("3"), 10)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "orphan.catalog.yaml"), []byte(`semesters:
  1zzz1:
    subjects:
      - name: X
        formula: td_exam
        coefficient: 1
`), 0o644))
	_, err = l.LoadDir(base, dir)
	assert.ErrorIs(t, err, ErrInvalidCatalog)
}

func TestParseUnknownFormat(t *testing.T) {
	_, err := Parse([]byte(""), discovery.FormatUnknown)
	assert.Error(t, err)
}
