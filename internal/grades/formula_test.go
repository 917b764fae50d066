package grades

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dotcommander/moyenne/internal/logging"
)

func muteLog(t *testing.T) *[]string {
	t.Helper()
	var lines []string
	old := logging.Logf
	logging.SetLogger(func(format string, v ...any) {
		lines = append(lines, format)
	})
	t.Cleanup(func() { logging.Logf = old })
	return &lines
}

func TestFormulaTableWeightsSumToOne(t *testing.T) {
	for _, kind := range Formulas() {
		t.Run(string(kind), func(t *testing.T) {
			f, ok := LookupFormula(kind)
			require.True(t, ok)
			assert.InDelta(t, 1.0, f.WeightSum(), 1e-9)
			assert.NoError(t, f.Validate())
		})
	}
	assert.Len(t, formulaTable, len(Formulas()))
}

func TestFormulaValidate(t *testing.T) {
	tests := []struct {
		name    string
		f       Formula
		wantErr string
	}{
		{"empty", Formula{Kind: "x"}, "no terms"},
		{"negative", Formula{Kind: "x", Terms: []Term{{FieldTD, -0.5}, {FieldExam, 1.5}}}, "negative weight"},
		{"not convex", Formula{Kind: "x", Terms: []Term{{FieldTD, 0.5}, {FieldExam, 0.6}}}, "must sum to 1.0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.f.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestRequiredInputs(t *testing.T) {
	tests := []struct {
		kind FormulaKind
		want []Field
	}{
		{FormulaTDExam, []Field{FieldTD, FieldExam}},
		{FormulaDS1DS2, []Field{FieldDS1, FieldDS2}},
		{FormulaTDDS1DS2, []Field{FieldTD, FieldDS1, FieldDS2}},
		{FormulaTPDS1DS2, []Field{FieldTP, FieldDS1, FieldDS2}},
		{FormulaTDTPExam, []Field{FieldTD, FieldTP, FieldExam}},
		{FormulaDS1Exam, []Field{FieldDS1, FieldExam}},
		{FormulaTDExamHalf, []Field{FieldTD, FieldExam}},
		{FormulaTPExam, []Field{FieldTP, FieldExam}},
		{FormulaTPDS1Exam, []Field{FieldTP, FieldDS1, FieldExam}},
	}
	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			assert.Equal(t, tt.want, RequiredInputs(tt.kind))
		})
	}
}

func TestRequiredInputsUnknownFormula(t *testing.T) {
	lines := muteLog(t)
	got := RequiredInputs("bogus")
	assert.NotNil(t, got)
	assert.Empty(t, got)
	assert.Len(t, *lines, 1)
}

func TestSubjectAverage(t *testing.T) {
	tests := []struct {
		name   string
		inputs GradeInput
		kind   FormulaKind
		want   float64
		wantOK bool
	}{
		{"td_exam", GradeInput{FieldTD: 12, FieldExam: 16}, FormulaTDExam, 14.8, true},
		{"ds1_ds2", GradeInput{FieldDS1: 8, FieldDS2: 14}, FormulaDS1DS2, 11, true},
		{"td_ds1_ds2", GradeInput{FieldTD: 10, FieldDS1: 10, FieldDS2: 20}, FormulaTDDS1DS2, 14, true},
		{"tp_ds1_ds2", GradeInput{FieldTP: 20, FieldDS1: 10, FieldDS2: 10}, FormulaTPDS1DS2, 12, true},
		{"td_tp_exam", GradeInput{FieldTD: 10, FieldTP: 15, FieldExam: 10}, FormulaTDTPExam, 11, true},
		{"ds1_exam", GradeInput{FieldDS1: 20, FieldExam: 10}, FormulaDS1Exam, 13, true},
		{"td_exam_50_50", GradeInput{FieldTD: 9, FieldExam: 13}, FormulaTDExamHalf, 11, true},
		{"tp_exam", GradeInput{FieldTP: 10, FieldExam: 20}, FormulaTPExam, 17, true},
		{"tp_ds1_exam", GradeInput{FieldTP: 10, FieldDS1: 15, FieldExam: 10}, FormulaTPDS1Exam, 11, true},
		{"zeros are grades", GradeInput{FieldTD: 0, FieldExam: 0}, FormulaTDExam, 0, true},
		{"extra fields ignored", GradeInput{FieldTD: 12, FieldExam: 16, FieldTP: 3}, FormulaTDExam, 14.8, true},
		{"missing exam", GradeInput{FieldTD: 12}, FormulaTDExam, 0, false},
		{"nil inputs", nil, FormulaDS1DS2, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := SubjectAverage(tt.inputs, tt.kind)
			assert.Equal(t, tt.wantOK, ok)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestSubjectAverageUnknownFormula(t *testing.T) {
	lines := muteLog(t)
	_, ok := SubjectAverage(GradeInput{FieldTD: 10}, "bogus")
	assert.False(t, ok)
	assert.NotEmpty(t, *lines)
}

func TestDescribe(t *testing.T) {
	assert.Equal(t, "TD × 0.3 + Examen × 0.7", Describe(FormulaTDExam))
	assert.Equal(t, "TP × 0.1 + DS1 × 0.2 + Examen × 0.7", Describe(FormulaTPDS1Exam))
	assert.Equal(t, "DS1 × 0.5 + DS2 × 0.5", Describe(FormulaDS1DS2))
	assert.Empty(t, Describe("bogus"))
}

func TestLabel(t *testing.T) {
	tests := map[Field]string{
		FieldTD:   "TD",
		FieldTP:   "TP",
		FieldDS1:  "DS1",
		FieldDS2:  "DS2",
		FieldExam: "Examen",
		"qcm":     "QCM",
	}
	for in, want := range tests {
		assert.Equal(t, want, Label(in))
	}
}

func TestParseFormula(t *testing.T) {
	k, err := ParseFormula("tp_exam")
	require.NoError(t, err)
	assert.Equal(t, FormulaTPExam, k)

	_, err = ParseFormula("td_only")
	assert.ErrorIs(t, err, ErrUnknownFormula)
}

func TestParseField(t *testing.T) {
	f, err := ParseField("ds2")
	require.NoError(t, err)
	assert.Equal(t, FieldDS2, f)

	_, err = ParseField("oral")
	assert.Error(t, err)
}

func TestGradeInputCopies(t *testing.T) {
	orig := GradeInput{FieldTD: 10}
	with := orig.With(FieldExam, 0)
	without := with.Without(FieldTD)

	assert.Equal(t, GradeInput{FieldTD: 10}, orig)
	assert.True(t, with.Has(FieldExam))
	assert.False(t, without.Has(FieldTD))
	assert.True(t, without.Any())
	assert.False(t, GradeInput(nil).Any())
}
