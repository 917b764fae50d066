package format

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dotcommander/moyenne/internal/catalog"
	"github.com/dotcommander/moyenne/internal/discovery"
)

func TestFormatYAML(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name: "reorder subject fields",
			input: `semesters:
  1lse1:
    subjects:
      - coefficient: 2.5
        formula: td_exam
        name: Analyse
`,
			expected: `semesters:
  1lse1:
    subjects:
      - name: Analyse
        formula: td_exam
        coefficient: 2.5
`,
		},
		{
			name: "years before semesters, flow expanded",
			input: `semesters:
  2lbi2:
    subjects: [{name: SGBD, formula: tp_exam, coefficient: 1}]
years:
  "2": {specializations: [{name: BI, id: lbi}], label: Deuxième année}
`,
			expected: `years:
  "2":
    label: Deuxième année
    specializations:
      - id: lbi
        name: BI
semesters:
  2lbi2:
    subjects:
      - name: SGBD
        formula: tp_exam
        coefficient: 1
`,
		},
		{
			name: "semester keys sorted",
			input: `semesters:
  2lse1:
    subjects: []
  1lse1:
    subjects: []
`,
			expected: `semesters:
  1lse1:
    subjects: []
  2lse1:
    subjects: []
`,
		},
		{
			name: "comments kept, trailing newlines collapsed",
			input: `# programs for the BI track
semesters:
  3lbi1:
    subjects:
      - name: Gestion de Projet # weighted with TP
        formula: tp_ds1_ds2
        coefficient: 2


`,
			expected: `# programs for the BI track
semesters:
  3lbi1:
    subjects:
      - name: Gestion de Projet # weighted with TP
        formula: tp_ds1_ds2
        coefficient: 2
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Format([]byte(tt.input), discovery.FormatYAML)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, string(got))
		})
	}
}

func TestFormatYAML_Idempotent(t *testing.T) {
	c, err := catalog.Default()
	require.NoError(t, err)
	require.NotEmpty(t, c.Semesters)

	src := []byte(`years:
  "1":
    label: Première année
semesters:
  1lse1:
    subjects:
      - {coefficient: 0.75, name: Français, formula: td_exam, optional_group: langue}
      - {coefficient: 0.75, name: Anglais, formula: td_exam, optional_group: langue}
`)
	once, err := Format(src, discovery.FormatYAML)
	require.NoError(t, err)
	twice, err := Format(once, discovery.FormatYAML)
	require.NoError(t, err)
	assert.Equal(t, string(once), string(twice))
	assert.Empty(t, Diff(string(once), string(twice), "x.catalog.yaml"))
}

func TestFormatYAML_Errors(t *testing.T) {
	_, err := Format([]byte("- a\n- b\n"), discovery.FormatYAML)
	assert.ErrorContains(t, err, "must be a mapping")

	_, err = Format([]byte("semesters: [oops"), discovery.FormatYAML)
	assert.ErrorContains(t, err, "parsing YAML")

	got, err := Format([]byte("  \n"), discovery.FormatYAML)
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = Format([]byte("x"), discovery.FormatUnknown)
	assert.Error(t, err)
}

func TestFormatTOML(t *testing.T) {
	src := []byte(`[[semesters.3leb1.subjects]]
coefficient = 1.5
formula = "tp_ds1_exam"
name = "Gestion de Projet"
`)
	got, err := Format(src, discovery.FormatTOML)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(string(got), "\n"))

	want, err := catalog.Parse(src, discovery.FormatTOML)
	require.NoError(t, err)
	back, err := catalog.Parse(got, discovery.FormatTOML)
	require.NoError(t, err)
	assert.Equal(t, want.Semesters, back.Semesters)
}

func TestDiff(t *testing.T) {
	assert.Empty(t, Diff("a\n", "a\n", "f"))

	d := Diff("name: x\nformula: y\n", "formula: y\nname: x\n", "f.catalog.yaml")
	assert.Contains(t, d, "--- f.catalog.yaml")
	assert.Contains(t, d, "+++ f.catalog.yaml (formatted)")
	assert.Contains(t, d, "- name: x")
	assert.Contains(t, d, "+ formula: y")
}
