package evaluation

import (
	"bufio"
	"io"
	"slices"
	"strings"

	"github.com/siherrmann/nerval/helper"
	"github.com/siherrmann/nerval/model"
)

const sectionPrefix = "## DOSSIER:"

// Kinds of malformed gold standard lines
const (
	IssueFieldCount  = "field_count"
	IssueEmptyField  = "empty_field"
	IssueUnknownType = "unknown_type"
	IssueLineTooLong = "line_too_long"
)

// maxGoldLineLength bounds a single record; longer lines are reported, not parsed
const maxGoldLineLength = 1024 * 1024

// LineIssue describes a gold standard line that was skipped
type LineIssue struct {
	Line int    `json:"line"`
	Kind string `json:"kind"`
	Text string `json:"text"`
}

// LoadGoldStandard reads annotations in the FOLDER|DOCUMENT|TYPE|ENTITY format.
// Lines starting with "## DOSSIER:" open a folder section, other lines starting
// with "#" and blank lines are ignored. An empty folder field falls back to the
// current section. Malformed or oversized records are skipped and returned as issues.
func LoadGoldStandard(r io.Reader) ([]model.Annotation, []LineIssue, error) {
	annotations := []model.Annotation{}
	issues := []LineIssue{}

	reader := bufio.NewReader(r)
	section := ""
	lineNumber := 0
	for {
		raw, err := reader.ReadString('\n')
		if err != nil && err != io.EOF {
			return nil, nil, helper.NewError("read gold standard", err)
		}
		if raw == "" && err == io.EOF {
			break
		}
		lineNumber++
		if len(raw) > maxGoldLineLength {
			issues = append(issues, LineIssue{Line: lineNumber, Kind: IssueLineTooLong, Text: raw[:80]})
			continue
		}
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		if folder, ok := strings.CutPrefix(line, sectionPrefix); ok {
			section = strings.TrimSpace(folder)
			continue
		}
		if strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.Split(line, "|")
		if len(parts) != 4 {
			issues = append(issues, LineIssue{Line: lineNumber, Kind: IssueFieldCount, Text: line})
			continue
		}
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		folder, document, label, text := parts[0], parts[1], parts[2], parts[3]
		if folder == "" {
			folder = section
		}
		if slices.Contains([]string{folder, document, label, text}, "") {
			issues = append(issues, LineIssue{Line: lineNumber, Kind: IssueEmptyField, Text: line})
			continue
		}
		entityType, ok := model.ParseEntityType(label)
		if !ok {
			issues = append(issues, LineIssue{Line: lineNumber, Kind: IssueUnknownType, Text: line})
			continue
		}

		annotations = append(annotations, model.Annotation{
			Folder:     folder,
			Document:   document,
			EntityType: entityType,
			EntityText: text,
		})
	}
	return annotations, issues, nil
}

// RestrictFolders keeps the annotations whose folder is one of folders
func RestrictFolders(annotations []model.Annotation, folders []string) []model.Annotation {
	kept := []model.Annotation{}
	for _, a := range annotations {
		if slices.Contains(folders, a.Folder) {
			kept = append(kept, a)
		}
	}
	return kept
}
