package main

import (
	"time"

	"github.com/siherrmann/nerval/core/evaluation"
	"github.com/siherrmann/nerval/export"
	"github.com/siherrmann/nerval/model"
	"github.com/spf13/cobra"
)

var evaluateFlags struct {
	gold        string
	predictions string
	outDir      string
	allFolders  bool
}

var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Evaluate exported predictions against a gold standard",
	Long: `Evaluate compares the CSV entity tables of a predictions directory with a
gold standard file and prints precision, recall and F1 per entity type.
Predictions of folders missing from the gold standard are ignored unless --all-folders is set.`,
	RunE: runEvaluate,
}

func init() {
	evaluateCmd.Flags().StringVar(&evaluateFlags.gold, "gold", "", "gold standard file")
	evaluateCmd.Flags().StringVar(&evaluateFlags.predictions, "predictions", "out", "directory with the entity CSV tables")
	evaluateCmd.Flags().StringVar(&evaluateFlags.outDir, "out", "", "directory for the report files (stdout only if empty)")
	evaluateCmd.Flags().BoolVar(&evaluateFlags.allFolders, "all-folders", false, "also count predictions of folders without gold annotations")
	evaluateCmd.MarkFlagRequired("gold")
}

func runEvaluate(cmd *cobra.Command, args []string) error {
	config, err := loadConfig()
	if err != nil {
		return err
	}

	gold, err := readGold(evaluateFlags.gold)
	if err != nil {
		return err
	}
	pred, err := export.ReadPredictions(evaluateFlags.predictions)
	if err != nil {
		return err
	}
	if !evaluateFlags.allFolders {
		pred = evaluation.RestrictFolders(pred, goldFolders(gold))
	}

	types := config.EntityTypes()
	if len(types) == 0 {
		types = model.DefaultEntityTypes
	}
	report := evaluation.Evaluate(gold, pred, types).Report(types, config.ConfidenceLevel)
	header := evaluation.ReportHeader{
		GoldStandard: evaluateFlags.gold,
		Predictions:  evaluateFlags.predictions,
		Generated:    time.Now(),
	}

	if evaluateFlags.outDir != "" {
		if err := writeEvaluation(report, evaluateFlags.outDir, header); err != nil {
			return err
		}
	}
	return report.WriteText(cmd.OutOrStdout(), header)
}
