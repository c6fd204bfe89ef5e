// Package orchestrator drives a capture run: checkout per commit group,
// server bounce, sequential captures with per-item failure isolation,
// result accumulation, and a single guaranteed teardown.
package orchestrator

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/mleclerc/gitshot/internal/config"
	"github.com/mleclerc/gitshot/internal/history"
	"github.com/mleclerc/gitshot/internal/plan"
)

// ProjectState navigates the project's version-control history.
type ProjectState interface {
	Checkout(commitID string) error
	Restore() error
}

// AppServer manages the served application's process.
type AppServer interface {
	Start() error
	Stop() error
	Restart() error
	ClearCache() error
	BaseURL() string
}

// Capturer takes screenshots through a browser session.
type Capturer interface {
	Start() error
	Capture(spec *plan.CaptureSpec, baseURL string) (string, error)
	Stop() error
}

// RunResult records the outcome of one attempted capture. Results are
// append-only; a failed capture still produces one.
type RunResult struct {
	Name        string `json:"name"`
	Filename    string `json:"filename"`
	Path        string `json:"path,omitempty"`
	Commit      string `json:"commit"`
	CommitIndex int    `json:"commit_index"`
	Status      string `json:"status"` // "success", "error"
	Error       string `json:"error,omitempty"`
}

// Orchestrator owns the run's resources and the accumulated results.
type Orchestrator struct {
	state   ProjectState
	server  AppServer
	browser Capturer
	cfg     *config.Config
	hist    *history.Store // nil disables history; recording is best-effort
	out     io.Writer

	project  string
	runID    int64
	results  []RunResult
	torndown bool
}

// New creates an Orchestrator. hist may be nil.
func New(state ProjectState, srv AppServer, browser Capturer, cfg *config.Config, hist *history.Store, project string, out io.Writer) *Orchestrator {
	return &Orchestrator{
		state:   state,
		server:  srv,
		browser: browser,
		cfg:     cfg,
		hist:    hist,
		project: project,
		out:     out,
	}
}

// Setup starts the browser and the served application.
func (o *Orchestrator) Setup() error {
	if err := o.browser.Start(); err != nil {
		return fmt.Errorf("setup browser: %w", err)
	}
	if err := o.server.Start(); err != nil {
		return fmt.Errorf("setup server: %w", err)
	}
	return nil
}

// Teardown releases every resource in a fixed order: browser, server,
// then version-control restore. Later steps run even when an earlier
// one fails. Idempotent, so a deferred call after an explicit one does
// not restore twice.
func (o *Orchestrator) Teardown() {
	if o.torndown {
		return
	}
	o.torndown = true

	if err := o.browser.Stop(); err != nil {
		fmt.Fprintf(o.out, "warning: browser stop: %v\n", err)
	}
	if err := o.server.Stop(); err != nil {
		fmt.Fprintf(o.out, "warning: server stop: %v\n", err)
	}
	if err := o.state.Restore(); err != nil {
		fmt.Fprintf(o.out, "warning: git restore: %v\n", err)
	}
}

// Run iterates the commit groups chronologically. A checkout failure
// fails its whole group; a capture failure fails only that capture.
// Neither aborts the run.
func (o *Orchestrator) Run(groups []plan.CommitGroup, only []string) {
	filtered := filterGroups(groups, only)
	total := 0
	for _, g := range filtered {
		total += len(g.Screenshots)
	}
	if total == 0 {
		fmt.Fprintf(o.out, "No annotated commits to capture.\n")
		fmt.Fprintf(o.out, "Tag commits with: git commit -m '[screenshot:name] Description'\n")
		return
	}

	if o.hist != nil {
		if id, err := o.hist.BeginRun(o.project); err == nil {
			o.runID = id
		}
	}

	fmt.Fprintf(o.out, "\n%d captures across %d commits\n", total, len(filtered))

	done := 0
	for _, group := range filtered {
		prefix := fmt.Sprintf("%02d_", group.Index)

		fmt.Fprintf(o.out, "\n%s\n", strings.Repeat("=", 60))
		fmt.Fprintf(o.out, "[%02d] Commit %s - %s\n", group.Index, plan.ShortHash(group.CommitID), truncate(group.Description, 40))
		fmt.Fprintf(o.out, "%s\n", strings.Repeat("=", 60))

		if err := o.state.Checkout(group.CommitID); err != nil {
			fmt.Fprintf(o.out, "  checkout failed: %v\n", err)
			for _, spec := range group.Screenshots {
				done++
				o.record(failedResult(spec, group, prefix, fmt.Sprintf("checkout failed: %v", err)))
			}
			continue
		}

		// One cache clear and server bounce per commit group, not one
		// per capture.
		if err := o.server.ClearCache(); err != nil {
			fmt.Fprintf(o.out, "  warning: %v\n", err)
		}
		if err := o.server.Restart(); err != nil {
			fmt.Fprintf(o.out, "  warning: server restart: %v\n", err)
		}

		for _, spec := range group.Screenshots {
			done++
			fmt.Fprintf(o.out, "\n  [%d/%d] %s\n", done, total, spec.Name)

			o.cfg.Resolve(spec)
			spec.OutputPath = o.outputPath(spec.Name, prefix)

			path, err := o.browser.Capture(spec, o.server.BaseURL())
			if err != nil {
				fmt.Fprintf(o.out, "    error: %v\n", err)
				o.record(failedResult(spec, group, prefix, err.Error()))
				continue
			}
			fmt.Fprintf(o.out, "    saved: %s\n", path)
			o.record(RunResult{
				Name:        spec.Name,
				Filename:    prefix + spec.Name + ".png",
				Path:        path,
				Commit:      plan.ShortHash(group.CommitID),
				CommitIndex: group.Index,
				Status:      "success",
			})
		}
	}

	if o.hist != nil && o.runID != 0 {
		succeeded, failed := o.counts()
		_ = o.hist.FinishRun(o.runID, len(o.results), succeeded, failed)
	}
}

// Results returns the accumulated run results.
func (o *Orchestrator) Results() []RunResult {
	return o.results
}

// outputPath computes the final image path: the output directory with
// the sequence prefix, or a configured custom path with the prefix
// injected into its filename stem, directory and extension preserved.
func (o *Orchestrator) outputPath(name, prefix string) string {
	if custom := o.cfg.CustomOutput(name); custom != "" {
		ext := filepath.Ext(custom)
		stem := strings.TrimSuffix(filepath.Base(custom), ext)
		return filepath.Join(filepath.Dir(custom), prefix+stem+ext)
	}
	return filepath.Join(o.cfg.OutputDir, prefix+name+".png")
}

func (o *Orchestrator) record(r RunResult) {
	o.results = append(o.results, r)
	if o.hist != nil && o.runID != 0 {
		_ = o.hist.RecordCapture(o.runID, history.CaptureRecord{
			Name:        r.Name,
			Filename:    r.Filename,
			Path:        r.Path,
			Commit:      r.Commit,
			CommitIndex: r.CommitIndex,
			Status:      r.Status,
			Error:       r.Error,
		})
	}
}

func (o *Orchestrator) counts() (succeeded, failed int) {
	for _, r := range o.results {
		if r.Status == "success" {
			succeeded++
		} else {
			failed++
		}
	}
	return
}

func failedResult(spec *plan.CaptureSpec, group plan.CommitGroup, prefix, detail string) RunResult {
	return RunResult{
		Name:        spec.Name,
		Filename:    prefix + spec.Name + ".png",
		Commit:      plan.ShortHash(group.CommitID),
		CommitIndex: group.Index,
		Status:      "error",
		Error:       detail,
	}
}

// filterGroups applies the --only name set, dropping groups left empty.
// Group indexes keep their original plan positions.
func filterGroups(groups []plan.CommitGroup, only []string) []plan.CommitGroup {
	if len(only) == 0 {
		return groups
	}
	wanted := make(map[string]bool, len(only))
	for _, n := range only {
		wanted[n] = true
	}

	var out []plan.CommitGroup
	for _, g := range groups {
		var specs []*plan.CaptureSpec
		for _, s := range g.Screenshots {
			if wanted[s.Name] {
				specs = append(specs, s)
			}
		}
		if len(specs) == 0 {
			continue
		}
		fg := g
		fg.Screenshots = specs
		out = append(out, fg)
	}
	return out
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
