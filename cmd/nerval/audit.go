package main

import (
	"os"
	"time"

	"github.com/siherrmann/nerval/core/evaluation"
	"github.com/siherrmann/nerval/export"
	"github.com/spf13/cobra"
)

var auditFlags struct {
	dataDir     string
	predictions string
	out         string
	sampleSize  int
	seed        int64
}

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Audit the quality of exported entities against their documents",
	Long: `Audit draws a stratified sample of the exported entities and checks each one
against its source documents: presence, type keywords, boundaries and parasite words.
It prints the pass rates with confidence margins and a weighted global score.`,
	RunE: runAudit,
}

func init() {
	defaults := evaluation.DefaultAuditConfig()
	auditCmd.Flags().StringVar(&auditFlags.dataDir, "data", "", "directory with one sub-directory of markdown documents per folder")
	auditCmd.Flags().StringVar(&auditFlags.predictions, "predictions", "out", "directory with the entity CSV tables")
	auditCmd.Flags().StringVar(&auditFlags.out, "out", "", "file for the audit report (stdout only if empty)")
	auditCmd.Flags().IntVar(&auditFlags.sampleSize, "sample", defaults.SampleSize, "entities sampled per frequency stratum and type")
	auditCmd.Flags().Int64Var(&auditFlags.seed, "seed", defaults.Seed, "sampling seed")
}

func runAudit(cmd *cobra.Command, args []string) error {
	config, err := loadConfig()
	if err != nil {
		return err
	}

	n, err := newNerval(config, auditFlags.dataDir)
	if err != nil {
		return err
	}
	defer n.Close()

	mentions, err := export.ReadMentions(auditFlags.predictions)
	if err != nil {
		return err
	}

	auditConfig := evaluation.DefaultAuditConfig()
	auditConfig.SampleSize = auditFlags.sampleSize
	auditConfig.Seed = auditFlags.seed
	auditConfig.Confidence = config.ConfidenceLevel

	report, err := n.Audit(cmd.Context(), mentions, auditConfig)
	if err != nil {
		return err
	}

	generated := time.Now()
	if auditFlags.out != "" {
		f, err := os.Create(auditFlags.out)
		if err != nil {
			return err
		}
		if err := report.WriteText(f, generated); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
	}
	return report.WriteText(cmd.OutOrStdout(), generated)
}
