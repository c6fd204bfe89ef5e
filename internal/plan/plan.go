// Package plan builds the capture plan from annotated commit history.
//
// A commit opts into the plan by carrying a [screenshot:name] tag in its
// message, or [screenshot:a,b,c] for several captures of the same state.
// The plan is a chronological list of commit groups, each holding one
// capture spec per requested name.
package plan

import (
	"regexp"
	"strings"
)

// tagPattern captures one or more comma-separated capture names,
// e.g. [screenshot:home-page] or [screenshot:home,about,contact].
var tagPattern = regexp.MustCompile(`\[screenshot:([^\]]+)\]`)

// CaptureSpec describes one requested screenshot. Created here with
// compiled-in defaults, overlaid by config.Resolve before capture.
type CaptureSpec struct {
	Name           string  `json:"name"`
	CommitID       string  `json:"commit"`
	CommitMessage  string  `json:"commit_message"`
	Description    string  `json:"description"`
	URL            string  `json:"url"`
	OutputPath     string  `json:"output_path"`
	ViewportWidth  int     `json:"viewport_width"`
	ViewportHeight int     `json:"viewport_height"`
	FullPage       bool    `json:"full_page"`
	WaitFor        string  `json:"wait_for,omitempty"`
	Delay          float64 `json:"delay"`
	IsErrorPage    bool    `json:"is_error_page"`
	ShowTitleBar   bool    `json:"show_title_bar"`
	TitleBarStyle  string  `json:"title_bar_style"`
}

// CommitGroup is the set of captures sharing one annotated commit.
// Index is the 1-based chronological ordinal over all annotated commits.
type CommitGroup struct {
	CommitID      string         `json:"commit"`
	CommitMessage string         `json:"commit_message"`
	Description   string         `json:"description"`
	Index         int            `json:"index"`
	Screenshots   []*CaptureSpec `json:"screenshots"`
}

// Commit is the slice of commit history the builder needs.
type Commit struct {
	Hash    string
	Message string
}

// NewCaptureSpec creates a spec with compiled-in defaults.
func NewCaptureSpec(name, commitID, message string) *CaptureSpec {
	return &CaptureSpec{
		Name:           name,
		CommitID:       commitID,
		CommitMessage:  message,
		Description:    firstLine(message),
		URL:            "/",
		ViewportWidth:  1280,
		ViewportHeight: 800,
		Delay:          1.0,
		TitleBarStyle:  "chrome",
	}
}

// Build derives the capture plan from commit history given newest-first
// (git log order). Groups are reversed into chronological order and only
// then assigned indexes, so index 1 is always the earliest annotated
// commit. Pure: no side effects, no working-tree access.
func Build(history []Commit) []CommitGroup {
	var groups []CommitGroup
	for _, c := range history {
		names := ParseTag(c.Message)
		if len(names) == 0 {
			continue
		}
		specs := make([]*CaptureSpec, 0, len(names))
		for _, name := range names {
			specs = append(specs, NewCaptureSpec(name, c.Hash, c.Message))
		}
		groups = append(groups, CommitGroup{
			CommitID:      c.Hash,
			CommitMessage: c.Message,
			Description:   firstLine(c.Message),
			Screenshots:   specs,
		})
	}

	// Newest-first to chronological.
	for i, j := 0, len(groups)-1; i < j; i, j = i+1, j-1 {
		groups[i], groups[j] = groups[j], groups[i]
	}
	for i := range groups {
		groups[i].Index = i + 1
	}
	return groups
}

// ParseTag extracts the capture names from a commit message. The first
// tag in the message wins; names are trimmed of surrounding whitespace.
// Returns nil when the message carries no well-formed tag.
func ParseTag(message string) []string {
	m := tagPattern.FindStringSubmatch(message)
	if m == nil {
		return nil
	}
	var names []string
	for _, raw := range strings.Split(m[1], ",") {
		name := strings.TrimSpace(raw)
		if name != "" {
			names = append(names, name)
		}
	}
	return names
}

// TotalCaptures counts the capture specs across all groups.
func TotalCaptures(groups []CommitGroup) int {
	n := 0
	for _, g := range groups {
		n += len(g.Screenshots)
	}
	return n
}

// ShortHash returns the 8-character short form used in output and reports.
func ShortHash(hash string) string {
	if len(hash) > 8 {
		return hash[:8]
	}
	return hash
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
