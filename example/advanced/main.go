package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/siherrmann/nerval"
	"github.com/siherrmann/nerval/core/evaluation"
	"github.com/siherrmann/nerval/export"
	"github.com/siherrmann/nerval/helper"
	"github.com/siherrmann/nerval/model"
)

var documents = []*model.Document{
	{
		Folder: "R1048",
		Name:   "doc01",
		Source: "advanced_example",
		Content: `Albert Einstein wrote to the League of Nations in Geneva.
The International Committee on Intellectual Cooperation met in Paris under the chairmanship of Henri Bergson.`,
		Metadata: model.Metadata{"language": "en"},
	},
	{
		Folder: "R1048",
		Name:   "doc02",
		Source: "advanced_example",
		Content: `Marie Curie travelled from Warsaw to Geneva.
Gilbert Murray represented the University of Oxford.`,
		Metadata: model.Metadata{"language": "en"},
	},
}

func main() {
	ctx := context.Background()

	// Start a test PostgreSQL container
	teardown, dbPort, err := helper.MustStartPostgresContainer()
	if err != nil {
		log.Fatalf("Failed to start PostgreSQL container: %v", err)
	}
	defer teardown(ctx)

	dbConfig := &helper.DatabaseConfiguration{
		Host:     "localhost",
		Port:     dbPort,
		Database: "database",
		Username: "user",
		Password: "password",
		Schema:   "public",
		SSLMode:  "disable",
	}

	config := model.DefaultPipelineConfig()
	config.Workers = 2

	n, err := nerval.NewNervalWithDatabase(config, dbConfig)
	if err != nil {
		log.Fatalf("Failed to create nerval: %v", err)
	}
	defer n.Close()

	// Store the documents, the pipeline reads them back from Postgres
	for _, doc := range documents {
		if err := n.Documents.InsertDocument(doc); err != nil {
			log.Fatalf("Failed to insert document: %v", err)
		}
		fmt.Printf("Stored %s with RID %s\n", doc.Key(), doc.RID)
	}

	// Downloads the NER model on first use
	if err := n.UseDefaultExtractor(); err != nil {
		log.Fatalf("Failed to set up extractor: %v", err)
	}

	docs, err := n.Discover("R1048")
	if err != nil {
		log.Fatalf("Failed to list documents: %v", err)
	}
	result, err := n.Extract(ctx, docs)
	if err != nil {
		log.Fatalf("Failed to extract: %v", err)
	}

	outDir, err := os.MkdirTemp("", "nerval-advanced-")
	if err != nil {
		log.Fatalf("Failed to create output directory: %v", err)
	}
	paths, err := export.WriteMentions(outDir, result.Mentions(), config.EntityTypes())
	if err != nil {
		log.Fatalf("Failed to export mentions: %v", err)
	}
	fmt.Printf("\nExported %d mentions to:\n", result.Summary.Mentions)
	for _, path := range paths {
		fmt.Printf("  %s\n", path)
	}

	// Audit the mentions against the stored documents
	auditConfig := evaluation.DefaultAuditConfig()
	auditConfig.SampleSize = 10
	quality, err := n.Audit(ctx, result.Mentions(), auditConfig)
	if err != nil {
		log.Fatalf("Failed to audit: %v", err)
	}
	fmt.Println()
	if err := quality.WriteText(os.Stdout, time.Now()); err != nil {
		log.Fatalf("Failed to write audit: %v", err)
	}

	fmt.Println("\nAdvanced example completed successfully!")
}
