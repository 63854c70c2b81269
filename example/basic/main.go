package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/siherrmann/nerval"
	"github.com/siherrmann/nerval/core/evaluation"
	"github.com/siherrmann/nerval/core/pipeline"
	"github.com/siherrmann/nerval/model"
)

var documents = pipeline.MapDocumentSource{
	"R1048/doc01": `# Lettre au Secrétariat

Monsieur le Professeur Einstein remercie la Société des Nations pour son invitation à Genève.
Madame Marie Curie, membre de la Commission, arrivera de Paris lundi.`,
	"R1048/doc02": `Le Dr. Lorentz préside la séance. Marie Curie présente son rapport au Bureau.`,
}

const gold = `## DOSSIER: R1048
|doc01|PERSON|Monsieur le Professeur Einstein
|doc01|PERSON|Madame Marie Curie
|doc01|ORGANIZATION|Société des Nations
|doc01|GPE|Genève
|doc01|GPE|Paris
|doc02|PERSON|Dr. Lorentz
|doc02|PERSON|Marie Curie
|doc02|ORGANIZATION|Bureau`

// dictionary is a rule based stand-in for the NER model
var dictionary = []model.Candidate{
	{Text: "Monsieur le Professeur Einstein", Label: "person", Score: 0.91},
	{Text: "Madame Marie Curie", Label: "person", Score: 0.88},
	{Text: "Marie Curie", Label: "person", Score: 0.86},
	{Text: "Dr. Lorentz", Label: "person", Score: 0.74},
	{Text: "Monsieur", Label: "person", Score: 0.66},
	{Text: "Société des Nations", Label: "organization", Score: 0.9},
	{Text: "Commission", Label: "organization", Score: 0.52},
	{Text: "Genève", Label: "location", Score: 0.83},
	{Text: "Paris", Label: "location", Score: 0.79},
}

func extract(text string, labels []string, floor float64) ([]model.Candidate, error) {
	candidates := []model.Candidate{}
	for _, entry := range dictionary {
		if start := strings.Index(text, entry.Text); start >= 0 && entry.Score >= floor {
			entry.Start = start
			entry.End = start + len(entry.Text)
			candidates = append(candidates, entry)
		}
	}
	return candidates, nil
}

func main() {
	n, err := nerval.NewNerval(model.DefaultPipelineConfig(), documents)
	if err != nil {
		log.Fatalf("Failed to create nerval: %v", err)
	}
	defer n.Close()

	if err := n.SetExtractor(extract); err != nil {
		log.Fatalf("Failed to set extractor: %v", err)
	}

	docs := []*model.Document{
		{Folder: "R1048", Name: "doc01"},
		{Folder: "R1048", Name: "doc02"},
	}
	result, err := n.Extract(context.Background(), docs)
	if err != nil {
		log.Fatalf("Failed to extract: %v", err)
	}

	fmt.Printf("\nExtracted %d mentions from %d documents:\n", result.Summary.Mentions, result.Summary.Documents)
	for _, m := range result.Mentions() {
		fmt.Printf("  %-13s %.2f  %s/%s  %s", m.Type, m.Score, m.Folder, m.Document, m.Text)
		if m.Name != nil && m.Name.LastName != "" {
			fmt.Printf("  (last name: %s)", m.Name.LastName)
		}
		if m.Enrichment.City != "" {
			fmt.Printf("  (city: %s)", m.Enrichment.City)
		}
		fmt.Println()
	}

	goldAnnotations, _, err := evaluation.LoadGoldStandard(strings.NewReader(gold))
	if err != nil {
		log.Fatalf("Failed to read gold standard: %v", err)
	}

	report := n.Evaluate(goldAnnotations, result.Annotations())
	fmt.Println()
	if err := report.WriteText(os.Stdout, evaluation.ReportHeader{
		GoldStandard: "inline",
		Predictions:  "basic example",
		Generated:    time.Now(),
	}); err != nil {
		log.Fatalf("Failed to write report: %v", err)
	}

	fmt.Println("\nBasic example completed successfully!")
}
