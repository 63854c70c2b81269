package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/siherrmann/nerval"
	"github.com/siherrmann/nerval/core/evaluation"
	"github.com/siherrmann/nerval/export"
	"github.com/siherrmann/nerval/model"
	"github.com/spf13/cobra"
)

var extractFlags struct {
	dataDir string
	outDir  string
	folders []string
	gold    string
	workers int
}

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Extract entities from the documents and export them as CSV",
	Long: `Extract runs the NER pipeline over every document of the selected folders,
writes one CSV table per entity type to the output directory and prints the run summary.
With --gold the extracted entities are evaluated right away.`,
	RunE: runExtract,
}

func init() {
	extractCmd.Flags().StringVar(&extractFlags.dataDir, "data", "", "directory with one sub-directory of markdown documents per folder")
	extractCmd.Flags().StringVar(&extractFlags.outDir, "out", "out", "output directory")
	extractCmd.Flags().StringSliceVar(&extractFlags.folders, "folders", nil, "folders to process (all if empty)")
	extractCmd.Flags().StringVar(&extractFlags.gold, "gold", "", "gold standard file to evaluate against")
	extractCmd.Flags().IntVar(&extractFlags.workers, "workers", 0, "number of parallel documents (configuration value if 0)")
}

func runExtract(cmd *cobra.Command, args []string) error {
	config, err := loadConfig()
	if err != nil {
		return err
	}
	if extractFlags.workers > 0 {
		config.Workers = extractFlags.workers
	}

	n, err := newNerval(config, extractFlags.dataDir)
	if err != nil {
		return err
	}
	defer n.Close()

	if err := n.UseDefaultExtractor(); err != nil {
		return err
	}

	docs, err := n.Discover(extractFlags.folders...)
	if err != nil {
		return err
	}
	result, err := n.Extract(cmd.Context(), docs)
	if err != nil {
		return err
	}

	if _, err := export.WriteMentions(extractFlags.outDir, result.Mentions(), config.EntityTypes()); err != nil {
		return err
	}
	if err := export.WriteDiagnostics(extractFlags.outDir, result.Diagnostics()); err != nil {
		return err
	}
	printSummary(cmd.OutOrStdout(), result.Summary)

	if extractFlags.gold == "" {
		return nil
	}
	_, err = evaluateExtraction(n, result, extractFlags.gold, extractFlags.outDir)
	return err
}

// evaluateExtraction scores the run against the gold standard the same way
// the evaluate command scores the exported tables, and writes the report files.
func evaluateExtraction(n *nerval.Nerval, result *model.RunResult, goldPath string, outDir string) (*evaluation.Report, error) {
	gold, err := readGold(goldPath)
	if err != nil {
		return nil, err
	}
	report := n.Evaluate(gold, evaluation.RestrictFolders(result.Annotations(), goldFolders(gold)))
	err = writeEvaluation(report, outDir, evaluation.ReportHeader{
		GoldStandard: goldPath,
		Predictions:  outDir,
		Generated:    time.Now(),
	})
	if err != nil {
		return nil, err
	}
	return report, nil
}

// printSummary prints the user visible counts of a run
func printSummary(w io.Writer, s model.RunSummary) {
	fmt.Fprintf(w, "Documents processed:  %d\n", s.Documents)
	fmt.Fprintf(w, "Documents failed:     %d\n", s.DocumentsFailed)
	fmt.Fprintf(w, "Chunks processed:     %d\n", s.Chunks)
	fmt.Fprintf(w, "Chunks failed:        %d\n", s.ChunksFailed)
	fmt.Fprintf(w, "Candidates:           %d\n", s.Candidates)
	fmt.Fprintf(w, "Malformed candidates: %d\n", s.Malformed)
	fmt.Fprintf(w, "Below threshold:      %d\n", s.BelowThreshold)
	fmt.Fprintf(w, "Title only:           %d\n", s.TitleOnly)
	fmt.Fprintf(w, "Duplicates merged:    %d\n", s.Duplicates)
	fmt.Fprintf(w, "Final mentions:       %d\n", s.Mentions)
}

func readGold(path string) ([]model.Annotation, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	gold, issues, err := evaluation.LoadGoldStandard(f)
	if err != nil {
		return nil, err
	}
	for _, issue := range issues {
		logger().Warn("Skipped gold standard line", slog.Int("line", issue.Line), slog.String("kind", issue.Kind), slog.String("text", issue.Text))
	}
	return gold, nil
}

func goldFolders(gold []model.Annotation) []string {
	return evaluation.NewAnnotationSet(gold...).Folders()
}

func writeEvaluation(report *evaluation.Report, outDir string, header evaluation.ReportHeader) error {
	if err := export.WriteReport(outDir, report); err != nil {
		return err
	}
	f, err := os.Create(filepath.Join(outDir, "evaluation_report.txt"))
	if err != nil {
		return err
	}
	if err := report.WriteText(f, header); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
