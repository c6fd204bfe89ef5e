// Package cli wires the capture pipeline behind a cobra command.
package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mleclerc/gitshot/internal/capture"
	"github.com/mleclerc/gitshot/internal/config"
	"github.com/mleclerc/gitshot/internal/gitstate"
	"github.com/mleclerc/gitshot/internal/history"
	"github.com/mleclerc/gitshot/internal/orchestrator"
	"github.com/mleclerc/gitshot/internal/plan"
	"github.com/mleclerc/gitshot/internal/server"
	"github.com/mleclerc/gitshot/internal/titlebar"
)

var version = "dev"

func SetVersion(v string) {
	version = v
}

var (
	flagConfig     string
	flagOnly       []string
	flagList       bool
	flagNoHeadless bool
)

var rootCmd = &cobra.Command{
	Use:   "gitshot <project-path>",
	Short: "gitshot — commit-driven screenshot capture",
	Long: `gitshot scans a project's git history for commits annotated with
[screenshot:<names>] tags, checks out each annotated commit in turn,
restarts the project's dev server, and captures the named screenshots
through a headless browser. The original branch is restored when the
run finishes, whatever happened in between.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(cmd, args[0])
	},
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.Flags().StringVarP(&flagConfig, "config", "c", "", "path to screenshots.yml (default: <project>/screenshots.yml)")
	rootCmd.Flags().StringSliceVar(&flagOnly, "only", nil, "capture only these screenshot names")
	rootCmd.Flags().BoolVar(&flagList, "list", false, "print the capture plan without capturing")
	rootCmd.Flags().BoolVar(&flagNoHeadless, "no-headless", false, "run the browser with a visible window")
	rootCmd.AddCommand(versionCmd)
}

func run(cmd *cobra.Command, projectPath string) error {
	out := cmd.OutOrStdout()

	abs, err := filepath.Abs(projectPath)
	if err != nil {
		return fmt.Errorf("resolve project path: %w", err)
	}

	cfg, err := loadConfig(abs)
	if err != nil {
		return err
	}
	if !filepath.IsAbs(cfg.OutputDir) {
		cfg.OutputDir = filepath.Join(abs, cfg.OutputDir)
	}

	state, err := gitstate.New(abs)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "project: %s (branch %s)\n", abs, state.OriginalBranch())

	groups, err := state.ScreenshotCommits()
	if err != nil {
		return fmt.Errorf("scan history: %w", err)
	}

	if flagList {
		printPlan(out, groups)
		return nil
	}

	hist := openHistory(cmd, cfg)
	if hist != nil {
		defer hist.Close()
	}

	srv := server.New(abs, cfg.Server, out)
	engine := capture.NewEngine(!flagNoHeadless, titlebar.NewRenderer(), out)

	o := orchestrator.New(state, srv, engine, cfg, hist, abs, out)
	defer o.Teardown()

	if err := o.Setup(); err != nil {
		return err
	}
	o.Run(groups, flagOnly)
	o.Teardown()

	report := o.Report()
	fmt.Fprintf(out, "\n%s", report)
	reportPath := filepath.Join(cfg.OutputDir, "REPORT.md")
	if err := os.MkdirAll(filepath.Dir(reportPath), 0o755); err == nil {
		if err := os.WriteFile(reportPath, []byte(report), 0o644); err != nil {
			fmt.Fprintf(out, "warning: write report: %v\n", err)
		}
	}
	return nil
}

// loadConfig reads the explicit config path, or the project's
// screenshots.yml, falling back to compiled defaults when neither
// exists.
func loadConfig(projectPath string) (*config.Config, error) {
	path := flagConfig
	if path == "" {
		path = filepath.Join(projectPath, "screenshots.yml")
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return config.Default(), nil
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}
	return cfg, nil
}

// openHistory opens the run-history database. "off" disables it, and
// any open failure downgrades to a warning so a broken database never
// blocks a capture run.
func openHistory(cmd *cobra.Command, cfg *config.Config) *history.Store {
	out := cmd.OutOrStdout()
	path := cfg.HistoryDB
	if path == "off" {
		return nil
	}
	if path == "" {
		var err error
		path, err = history.DefaultPath()
		if err != nil {
			fmt.Fprintf(out, "warning: history disabled: %v\n", err)
			return nil
		}
	}
	hist, err := history.Open(path)
	if err != nil {
		fmt.Fprintf(out, "warning: history disabled: %v\n", err)
		return nil
	}
	return hist
}

func printPlan(out io.Writer, groups []plan.CommitGroup) {
	total := plan.TotalCaptures(groups)
	if total == 0 {
		fmt.Fprintf(out, "No annotated commits found.\n")
		return
	}
	fmt.Fprintf(out, "%d captures across %d commits:\n", total, len(groups))
	for _, g := range groups {
		fmt.Fprintf(out, "\n[%02d] %s %s\n", g.Index, plan.ShortHash(g.CommitID), g.Description)
		for _, s := range g.Screenshots {
			fmt.Fprintf(out, "     - %s\n", s.Name)
		}
	}
}
