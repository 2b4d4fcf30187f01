// cmd/sitegen/commands.go
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"site-pipeline/internal/app"
	"site-pipeline/internal/artifacts"
	"site-pipeline/internal/common/aws"
	"site-pipeline/internal/common/logger"
	"site-pipeline/internal/contentpack"
	"site-pipeline/internal/models"
	"site-pipeline/internal/orchestrator"
)

var (
	forceRegenerate bool
	packPath        string
	outputDir       string
)

var generateCmd = &cobra.Command{
	Use:   "generate <intake.json>",
	Short: "Run the pipeline for one project intake",
	Args:  cobra.ExactArgs(1),
	RunE:  runGenerate,
}

var validatePackCmd = &cobra.Command{
	Use:   "validate-pack <pack.json>",
	Short: "Check a content pack against the structural rules",
	Args:  cobra.ExactArgs(1),
	RunE:  runValidatePack,
}

var hashCmd = &cobra.Command{
	Use:   "hash <intake.json>",
	Short: "Print the cache key hash of an intake",
	Args:  cobra.ExactArgs(1),
	RunE:  runHash,
}

func init() {
	generateCmd.Flags().BoolVar(&forceRegenerate, "force", false, "ignore any cached content pack")
	generateCmd.Flags().StringVar(&packPath, "pack", "", "previously generated content pack to reuse when fresh")
	generateCmd.Flags().StringVar(&outputDir, "out", "", "output directory (default: output_dir from config)")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if outputDir != "" {
		cfg.OutputDir = outputDir
	}

	var intake models.ProjectIntake
	if err := readJSON(args[0], &intake); err != nil {
		return err
	}
	req := &orchestrator.GenerateRequest{Intake: intake, ForceRegenerate: forceRegenerate}
	if packPath != "" {
		req.ExistingPack = &models.ContentPack{}
		if err := readJSON(packPath, req.ExistingPack); err != nil {
			return err
		}
	}

	zapLog := logger.New(cfg.Logging.Level, "console")
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	ctx := cmd.Context()
	pipeline, err := app.New(ctx, cfg, log, app.Options{})
	if err != nil {
		return err
	}
	defer pipeline.Close()

	res := pipeline.Orchestrator.Generate(ctx, req)

	var dir string
	if res.Success {
		if dir, err = artifacts.Write(cfg.OutputDir, res); err != nil {
			return err
		}
	}
	if err := pipeline.Notifier.NotifyRunCompleted(ctx, aws.NewRunNotification(intake, res, dir)); err != nil {
		log.Warn("run notification failed", map[string]interface{}{"error": err.Error()})
	}

	printSummary(cmd.OutOrStdout(), res, dir)
	if !res.Success {
		return fmt.Errorf("run %s failed", res.RunID)
	}
	return nil
}

func printSummary(w io.Writer, res *models.PipelineResult, dir string) {
	status := "succeeded"
	if !res.Success {
		status = "failed"
	}
	fmt.Fprintf(w, "run %s %s (cache hit: %t, content attempts: %d)\n",
		res.RunID, status, res.Metrics.CacheHit, res.Metrics.ContentAttempts)
	if dir != "" {
		fmt.Fprintf(w, "files: %d written to %s\n", len(res.GeneratedFiles), dir)
	}
	if res.Verdict != nil {
		fmt.Fprintf(w, "editor score: %.1f (approved: %t)\n", res.Verdict.Scores.Aggregate, res.Verdict.Approved)
	}
	for _, todo := range res.RequiredTodos() {
		fmt.Fprintf(w, "required TODO at %s: %s\n", todo.Path, todo.Description)
	}
	for _, e := range res.Errors {
		fmt.Fprintf(w, "[%s] %s: %s\n", e.Phase, e.Code, e.Message)
	}
}

func runValidatePack(cmd *cobra.Command, args []string) error {
	var pack models.ContentPack
	if err := readJSON(args[0], &pack); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	issues := contentpack.Validate(&pack)
	for _, issue := range issues {
		fmt.Fprintln(out, "error:", issue.String())
	}
	for _, issue := range contentpack.ValidateSections(&pack) {
		fmt.Fprintln(out, "warning:", issue.String())
	}
	if len(issues) > 0 {
		return fmt.Errorf("%d structural issue(s)", len(issues))
	}
	fmt.Fprintln(out, "ok")
	return nil
}

func runHash(cmd *cobra.Command, args []string) error {
	var intake models.ProjectIntake
	if err := readJSON(args[0], &intake); err != nil {
		return err
	}
	h, err := contentpack.IntakeHash(intake)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), h)
	return nil
}

func readJSON(path string, v interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}
