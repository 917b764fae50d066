package output

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/dotcommander/moyenne/internal/grades"
)

// Version is stamped into JSON report headers.
var Version = "dev"

// JSONFormatter formats output as JSON
type JSONFormatter struct {
	indent     bool
	outputFile string
}

// NewJSONFormatter creates a new JSONFormatter. When outputFile is set the
// report goes there instead of to the writer passed to Format.
func NewJSONFormatter(indent bool, outputFile string) *JSONFormatter {
	return &JSONFormatter{indent: indent, outputFile: outputFile}
}

// JSONReport is the document written by JSONFormatter.
type JSONReport struct {
	Header    JSONHeader    `json:"header"`
	Selection JSONSelection `json:"selection"`
	Preview   bool          `json:"preview"`
	Passed    bool          `json:"passed"`
	Subjects  []Row         `json:"subjects"`
	Result    grades.Result `json:"result"`
}

// JSONHeader identifies the tool run.
type JSONHeader struct {
	Tool      string `json:"tool"`
	Version   string `json:"version"`
	Timestamp string `json:"timestamp"`
	ReportID  string `json:"report_id"`
}

// JSONSelection describes the semester the result belongs to.
type JSONSelection struct {
	Key            string `json:"key"`
	Year           string `json:"year"`
	YearLabel      string `json:"year_label"`
	Specialization string `json:"specialization"`
	SpecName       string `json:"specialization_name"`
	Semester       string `json:"semester"`
}

// Format writes r as JSON.
func (f *JSONFormatter) Format(w io.Writer, r Report) error {
	report := JSONReport{
		Header: JSONHeader{
			Tool:      "moyenne",
			Version:   Version,
			Timestamp: r.GeneratedAt.Format(time.RFC3339),
			ReportID:  r.ID,
		},
		Selection: JSONSelection{
			Key:            r.Key.String(),
			Year:           r.Key.Year,
			YearLabel:      r.YearLabel,
			Specialization: r.Key.Specialization,
			SpecName:       r.SpecializationName,
			Semester:       r.Key.Semester,
		},
		Preview:  r.Preview,
		Passed:   !r.Preview && r.Result.Passed(),
		Subjects: r.Rows,
		Result:   r.Result,
	}

	var data []byte
	var err error
	if f.indent {
		data, err = json.MarshalIndent(report, "", "  ")
	} else {
		data, err = json.Marshal(report)
	}
	if err != nil {
		return fmt.Errorf("error marshaling JSON: %w", err)
	}
	data = append(data, '\n')

	if f.outputFile != "" {
		if err := os.WriteFile(f.outputFile, data, 0o644); err != nil {
			return fmt.Errorf("error writing JSON to file: %w", err)
		}
		return nil
	}
	_, err = w.Write(data)
	return err
}

// ErrNoResult is returned by ReadResult when the document holds no result.
var ErrNoResult = errors.New("no result found in document")

// ReadResult decodes a result previously written by JSONFormatter. A bare
// grades.Result document is accepted too.
func ReadResult(r io.Reader) (grades.Result, error) {
	var doc struct {
		Envelope *grades.Result `json:"result"`
		grades.Result
	}
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return grades.Result{}, fmt.Errorf("error decoding result: %w", err)
	}
	switch {
	case doc.Envelope != nil:
		return *doc.Envelope, nil
	case doc.SubjectAverages != nil:
		return doc.Result, nil
	default:
		return grades.Result{}, ErrNoResult
	}
}
