package orchestrator

import (
	"fmt"
	"strings"
	"time"
)

// Report renders the run's results as a markdown document: totals
// first, then one line per capture in run order.
func (o *Orchestrator) Report() string {
	succeeded, failed := o.counts()

	var b strings.Builder
	b.WriteString("# Screenshot capture report\n\n")
	fmt.Fprintf(&b, "Date: %s\n\n", time.Now().Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "Total: %d captures\n", len(o.results))
	fmt.Fprintf(&b, "Success: %d\n", succeeded)
	fmt.Fprintf(&b, "Errors: %d\n\n", failed)
	b.WriteString("## Details\n\n")

	for _, r := range o.results {
		if r.Status == "success" {
			fmt.Fprintf(&b, "- ✓ **%s** (commit %s): `%s`\n", r.Name, r.Commit, r.Path)
		} else {
			fmt.Fprintf(&b, "- ✗ **%s** (commit %s): %s\n", r.Name, r.Commit, r.Error)
		}
	}
	return b.String()
}
