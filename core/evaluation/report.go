package evaluation

import (
	"bufio"
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/siherrmann/nerval/model"
)

const (
	MicroAverage = "MICRO-AVG"
	MacroAverage = "MACRO-AVG"
)

var (
	heavyRule = strings.Repeat("=", 80)
	lightRule = strings.Repeat("-", 80)
)

// ReportRow holds the scores of one line of the summary table.
// The margins are confidence interval half widths of precision and recall.
type ReportRow struct {
	Type            string  `json:"type"`
	Precision       float64 `json:"precision"`
	Recall          float64 `json:"recall"`
	F1              float64 `json:"f1"`
	TP              int     `json:"tp"`
	FP              int     `json:"fp"`
	FN              int     `json:"fn"`
	PrecisionMargin float64 `json:"precision_margin"`
	RecallMargin    float64 `json:"recall_margin"`
}

// Report is the result of an evaluation run
type Report struct {
	Confidence float64     `json:"confidence"`
	Rows       []ReportRow `json:"rows"`
	Micro      ReportRow   `json:"micro"`
	Macro      ReportRow   `json:"macro"`
	errors     map[model.EntityType]Metrics
}

// ReportHeader describes the inputs of a report
type ReportHeader struct {
	GoldStandard string
	Predictions  string
	Generated    time.Time
}

func newReportRow(name string, m Metrics, confidence float64) ReportRow {
	return ReportRow{
		Type:            name,
		Precision:       m.Precision(),
		Recall:          m.Recall(),
		F1:              m.F1(),
		TP:              m.TP,
		FP:              m.FP,
		FN:              m.FN,
		PrecisionMargin: ConfidenceInterval(m.Precision(), m.TP+m.FP, confidence),
		RecallMargin:    ConfidenceInterval(m.Recall(), m.TP+m.FN, confidence),
	}
}

// macroAverage is the unweighted mean of precision, recall and F1 over rows.
// Counts and margins stay zero.
func macroAverage(rows []ReportRow) ReportRow {
	macro := ReportRow{Type: MacroAverage}
	if len(rows) == 0 {
		return macro
	}
	for _, r := range rows {
		macro.Precision += r.Precision
		macro.Recall += r.Recall
		macro.F1 += r.F1
	}
	n := float64(len(rows))
	macro.Precision /= n
	macro.Recall /= n
	macro.F1 /= n
	return macro
}

// Row returns the summary row of an entity type
func (r *Report) Row(entityType model.EntityType) (ReportRow, bool) {
	for _, row := range r.Rows {
		if row.Type == string(entityType) {
			return row, true
		}
	}
	return ReportRow{}, false
}

// Errors returns the false positives and false negatives of an entity type,
// each sorted by folder, document and entity text.
func (r *Report) Errors(entityType model.EntityType) (falsePositives []model.Annotation, falseNegatives []model.Annotation) {
	m := r.errors[entityType]
	falsePositives = sortedAnnotations(m.FalsePositives)
	falseNegatives = sortedAnnotations(m.FalseNegatives)
	return falsePositives, falseNegatives
}

func sortedAnnotations(annotations []model.Annotation) []model.Annotation {
	sorted := append([]model.Annotation{}, annotations...)
	slices.SortStableFunc(sorted, func(a, b model.Annotation) int {
		if c := strings.Compare(a.Folder, b.Folder); c != 0 {
			return c
		}
		if c := strings.Compare(a.Document, b.Document); c != 0 {
			return c
		}
		return strings.Compare(a.EntityText, b.EntityText)
	})
	return sorted
}

// WriteText writes the plain text evaluation report
func (r *Report) WriteText(w io.Writer, header ReportHeader) error {
	b := bufio.NewWriter(w)

	fmt.Fprintf(b, "%s\nNER EVALUATION REPORT\n%s\n\n", heavyRule, heavyRule)
	fmt.Fprintf(b, "Gold Standard: %s\n", header.GoldStandard)
	fmt.Fprintf(b, "Predictions:   %s\n", header.Predictions)
	fmt.Fprintf(b, "Generated:     %s\n\n", header.Generated.Format("2006-01-02 15:04:05"))

	fmt.Fprintf(b, "%s\nSUMMARY METRICS\n%s\n\n", heavyRule, heavyRule)
	fmt.Fprintf(b, "%-15s %10s %10s %10s %6s %6s %6s\n", "Type", "Precision", "Recall", "F1", "TP", "FP", "FN")
	fmt.Fprintln(b, lightRule)
	for _, row := range r.Rows {
		writeCountRow(b, row)
	}
	fmt.Fprintln(b, lightRule)
	writeCountRow(b, r.Micro)
	fmt.Fprintf(b, "%-15s %10.3f %10.3f %10.3f\n\n", r.Macro.Type, r.Macro.Precision, r.Macro.Recall, r.Macro.F1)

	fmt.Fprintf(b, "Confidence intervals (%.0f%%):\n", r.Confidence*100)
	for _, row := range append(slices.Clone(r.Rows), r.Micro) {
		fmt.Fprintf(b, "  %-15s precision %.3f ± %.3f   recall %.3f ± %.3f\n", row.Type, row.Precision, row.PrecisionMargin, row.Recall, row.RecallMargin)
	}
	fmt.Fprintln(b)

	for _, row := range r.Rows {
		fps, fns := r.Errors(model.EntityType(row.Type))
		if len(fps) == 0 && len(fns) == 0 {
			continue
		}
		fmt.Fprintf(b, "%s\nERRORS FOR TYPE: %s\n%s\n\n", heavyRule, row.Type, heavyRule)
		writeErrors(b, "False Positives", fps)
		writeErrors(b, "False Negatives", fns)
	}

	fmt.Fprintf(b, "%s\nEND OF REPORT\n%s\n", heavyRule, heavyRule)
	return b.Flush()
}

func writeCountRow(w io.Writer, row ReportRow) {
	fmt.Fprintf(w, "%-15s %10.3f %10.3f %10.3f %6d %6d %6d\n", row.Type, row.Precision, row.Recall, row.F1, row.TP, row.FP, row.FN)
}

func writeErrors(w io.Writer, title string, annotations []model.Annotation) {
	if len(annotations) == 0 {
		return
	}
	fmt.Fprintf(w, "%s (%d):\n%s\n", title, len(annotations), lightRule)
	for _, a := range annotations {
		fmt.Fprintf(w, "  %s | %s | %s\n", a.Folder, a.Document, a.EntityText)
	}
	fmt.Fprintln(w)
}
