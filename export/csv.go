package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/siherrmann/nerval/core/evaluation"
	"github.com/siherrmann/nerval/helper"
	"github.com/siherrmann/nerval/model"
)

const (
	entitiesPrefix = "entities_"
	errorsPrefix   = "errors_"
	summaryFile    = "summary.csv"
	diagnosticFile = "diagnostics.csv"
)

// MentionColumns is the header of an entity table
var MentionColumns = []string{
	"Folder", "Document", "Entity", "Score", "Occurrences",
	"Civility", "Title", "FullTitle", "FirstName", "LastName",
	"Organization", "City", "Country", "Role",
}

// EntitiesFile returns the file name of the table of an entity type
func EntitiesFile(entityType model.EntityType) string {
	return entitiesPrefix + string(entityType) + ".csv"
}

// WriteMentions writes one table per entity type into dir, sorted by folder,
// document and descending score. Every type in types gets a table, even an
// empty one. It returns the written paths.
func WriteMentions(dir string, mentions []*model.Mention, types []model.EntityType) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, helper.NewError("create export directory", err)
	}

	byType := map[model.EntityType][]*model.Mention{}
	for _, m := range mentions {
		if m != nil {
			byType[m.Type] = append(byType[m.Type], m)
		}
	}

	paths := []string{}
	for _, t := range types {
		rows := byType[t]
		slices.SortStableFunc(rows, compareMentions)

		records := [][]string{MentionColumns}
		for _, m := range rows {
			records = append(records, mentionRecord(m))
		}

		path := filepath.Join(dir, EntitiesFile(t))
		if err := writeFile(path, records); err != nil {
			return nil, helper.NewError("write "+string(t)+" table", err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func compareMentions(a, b *model.Mention) int {
	if c := strings.Compare(a.Folder, b.Folder); c != 0 {
		return c
	}
	if c := strings.Compare(a.Document, b.Document); c != 0 {
		return c
	}
	switch {
	case a.Score > b.Score:
		return -1
	case a.Score < b.Score:
		return 1
	}
	return strings.Compare(a.Text, b.Text)
}

func mentionRecord(m *model.Mention) []string {
	name := model.PersonName{}
	if m.Name != nil {
		name = *m.Name
	}
	return []string{
		m.Folder,
		m.Document,
		m.Text,
		strconv.FormatFloat(m.Score, 'f', 4, 64),
		strconv.Itoa(m.Count()),
		name.Civility,
		name.Title,
		name.FullTitle,
		name.FirstName,
		name.LastName,
		m.Enrichment.Organization,
		m.Enrichment.City,
		m.Enrichment.Country,
		m.Enrichment.Role,
	}
}

// ReadMentions reads all entity tables of dir. The entity type is taken from
// the file name, so a table named entities_GPE.csv holds locations.
// Tables of unknown types are skipped.
func ReadMentions(dir string) ([]*model.Mention, error) {
	paths, err := filepath.Glob(filepath.Join(dir, entitiesPrefix+"*.csv"))
	if err != nil {
		return nil, helper.NewError("list entity tables", err)
	}
	slices.Sort(paths)

	mentions := []*model.Mention{}
	for _, path := range paths {
		label := strings.TrimSuffix(strings.TrimPrefix(filepath.Base(path), entitiesPrefix), ".csv")
		entityType, ok := model.ParseEntityType(label)
		if !ok {
			continue
		}

		read, err := readMentionFile(path, entityType)
		if err != nil {
			return nil, helper.NewError("read "+filepath.Base(path), err)
		}
		mentions = append(mentions, read...)
	}
	return mentions, nil
}

func readMentionFile(path string, entityType model.EntityType) ([]*model.Mention, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	header, err := reader.Read()
	if err == io.EOF {
		return []*model.Mention{}, nil
	}
	if err != nil {
		return nil, err
	}

	columns := map[string]int{}
	for i, h := range header {
		columns[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, required := range []string{"folder", "document", "entity"} {
		if _, ok := columns[required]; !ok {
			return nil, fmt.Errorf("missing column %q", required)
		}
	}

	mentions := []*model.Mention{}
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		field := func(name string) string {
			i, ok := columns[strings.ToLower(name)]
			if !ok || i >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[i])
		}

		m := &model.Mention{
			Text:     field("Entity"),
			Type:     entityType,
			Folder:   field("Folder"),
			Document: field("Document"),
			Enrichment: model.Enrichment{
				Organization: field("Organization"),
				City:         field("City"),
				Country:      field("Country"),
				Role:         field("Role"),
			},
		}
		if m.Text == "" {
			continue
		}
		if score, err := strconv.ParseFloat(field("Score"), 64); err == nil {
			m.Score = score
		}
		if occurrences, err := strconv.Atoi(field("Occurrences")); err == nil {
			m.Occurrences = occurrences
		}
		name := model.PersonName{
			Civility:  field("Civility"),
			Title:     field("Title"),
			FullTitle: field("FullTitle"),
			FirstName: field("FirstName"),
			LastName:  field("LastName"),
		}
		if name != (model.PersonName{}) {
			m.Name = &name
		}
		mentions = append(mentions, m)
	}
	return mentions, nil
}

// ReadPredictions reads the entity tables of dir as annotations.
// Document names like "R1048-13C_doc03" are normalized to "doc03".
func ReadPredictions(dir string) ([]model.Annotation, error) {
	mentions, err := ReadMentions(dir)
	if err != nil {
		return nil, err
	}
	annotations := make([]model.Annotation, 0, len(mentions))
	for _, m := range mentions {
		annotations = append(annotations, m.Annotation())
	}
	return annotations, nil
}

// WriteReport writes summary.csv and one errors_<TYPE>.csv per reported type
func WriteReport(dir string, report *evaluation.Report) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return helper.NewError("create export directory", err)
	}

	summary := [][]string{{"Type", "Precision", "Recall", "F1", "TP", "FP", "FN", "PrecisionMargin", "RecallMargin"}}
	for _, row := range append(slices.Clone(report.Rows), report.Micro, report.Macro) {
		summary = append(summary, []string{
			row.Type,
			formatRate(row.Precision),
			formatRate(row.Recall),
			formatRate(row.F1),
			strconv.Itoa(row.TP),
			strconv.Itoa(row.FP),
			strconv.Itoa(row.FN),
			formatRate(row.PrecisionMargin),
			formatRate(row.RecallMargin),
		})
	}
	if err := writeFile(filepath.Join(dir, summaryFile), summary); err != nil {
		return helper.NewError("write summary", err)
	}

	for _, row := range report.Rows {
		fps, fns := report.Errors(model.EntityType(row.Type))
		records := [][]string{{"Kind", "Folder", "Document", "Entity"}}
		for _, a := range fps {
			records = append(records, []string{"FP", a.Folder, a.Document, a.EntityText})
		}
		for _, a := range fns {
			records = append(records, []string{"FN", a.Folder, a.Document, a.EntityText})
		}
		if err := writeFile(filepath.Join(dir, errorsPrefix+row.Type+".csv"), records); err != nil {
			return helper.NewError("write errors", err)
		}
	}
	return nil
}

// WriteDiagnostics writes the diagnostics of a run to diagnostics.csv
func WriteDiagnostics(dir string, diagnostics []model.Diagnostic) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return helper.NewError("create export directory", err)
	}
	records := [][]string{{"Stage", "Folder", "Document", "Chunk", "Message"}}
	for _, d := range diagnostics {
		records = append(records, []string{d.Stage, d.Folder, d.Document, strconv.Itoa(d.Chunk), d.Message})
	}
	if err := writeFile(filepath.Join(dir, diagnosticFile), records); err != nil {
		return helper.NewError("write diagnostics", err)
	}
	return nil
}

func formatRate(v float64) string {
	return strconv.FormatFloat(v, 'f', 4, 64)
}

func writeFile(path string, records [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	w := csv.NewWriter(f)
	if err := w.WriteAll(records); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
