package plan

import (
	"fmt"
	"testing"
)

func TestParseTag_SingleName(t *testing.T) {
	names := ParseTag("[screenshot:home-page] Style the homepage")
	if len(names) != 1 || names[0] != "home-page" {
		t.Fatalf("expected [home-page], got %v", names)
	}
}

func TestParseTag_MultipleNamesTrimmed(t *testing.T) {
	names := ParseTag("[screenshot: a, b ,c ] Three pages")
	if len(names) != 3 {
		t.Fatalf("expected 3 names, got %v", names)
	}
	for i, want := range []string{"a", "b", "c"} {
		if names[i] != want {
			t.Errorf("names[%d] = %q, want %q", i, names[i], want)
		}
	}
}

func TestParseTag_NoTag(t *testing.T) {
	if names := ParseTag("Fix typo in README"); names != nil {
		t.Fatalf("expected nil, got %v", names)
	}
}

func TestParseTag_MalformedTag(t *testing.T) {
	// No closing delimiter: not a tag.
	if names := ParseTag("[screenshot:home Fix homepage"); names != nil {
		t.Fatalf("expected nil for malformed tag, got %v", names)
	}
}

func TestParseTag_FirstMatchWins(t *testing.T) {
	names := ParseTag("[screenshot:first] then [screenshot:second]")
	if len(names) != 1 || names[0] != "first" {
		t.Fatalf("expected [first], got %v", names)
	}
}

func TestBuild_ChronologicalIndexes(t *testing.T) {
	// git log order: newest first.
	history := []Commit{
		{Hash: "ccc3", Message: "[screenshot:three] Third step"},
		{Hash: "bbb2", Message: "Plain refactor, no capture"},
		{Hash: "bbb1", Message: "[screenshot:two] Second step"},
		{Hash: "aaa0", Message: "[screenshot:one] First step"},
	}

	groups := Build(history)
	if len(groups) != 3 {
		t.Fatalf("expected 3 groups, got %d", len(groups))
	}
	for i, wantHash := range []string{"aaa0", "bbb1", "ccc3"} {
		if groups[i].CommitID != wantHash {
			t.Errorf("group[%d].CommitID = %q, want %q", i, groups[i].CommitID, wantHash)
		}
		if groups[i].Index != i+1 {
			t.Errorf("group[%d].Index = %d, want %d", i, groups[i].Index, i+1)
		}
	}
}

func TestBuild_MultiNameGroup(t *testing.T) {
	groups := Build([]Commit{
		{Hash: "abc", Message: "[screenshot:a,b,c] All three\n\nBody text"},
	})
	if len(groups) != 1 {
		t.Fatalf("expected 1 group, got %d", len(groups))
	}
	g := groups[0]
	if len(g.Screenshots) != 3 {
		t.Fatalf("expected 3 specs, got %d", len(g.Screenshots))
	}
	for i, want := range []string{"a", "b", "c"} {
		s := g.Screenshots[i]
		if s.Name != want {
			t.Errorf("spec[%d].Name = %q, want %q", i, s.Name, want)
		}
		if s.CommitID != "abc" {
			t.Errorf("spec[%d].CommitID = %q, want abc", i, s.CommitID)
		}
		if s.Description != "[screenshot:a,b,c] All three" {
			t.Errorf("spec[%d].Description = %q", i, s.Description)
		}
	}
}

func TestBuild_TwoTaggedCommits(t *testing.T) {
	// End-to-end plan shape: first commit tags home, second tags home+about.
	groups := Build([]Commit{
		{Hash: "def456", Message: "[screenshot:home,about] Add about page"},
		{Hash: "abc123", Message: "[screenshot:home] Initial homepage"},
	})
	if len(groups) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(groups))
	}
	if groups[0].Index != 1 || groups[1].Index != 2 {
		t.Fatalf("indexes = %d,%d, want 1,2", groups[0].Index, groups[1].Index)
	}
	if len(groups[0].Screenshots) != 1 || len(groups[1].Screenshots) != 2 {
		t.Fatalf("group sizes = %d,%d, want 1,2",
			len(groups[0].Screenshots), len(groups[1].Screenshots))
	}

	// Duplicate name across commits yields independent specs.
	first := groups[0].Screenshots[0]
	second := groups[1].Screenshots[0]
	if first.Name != "home" || second.Name != "home" {
		t.Fatalf("expected home in both groups")
	}
	if first.CommitID == second.CommitID {
		t.Error("duplicate-name specs must keep their own commit identity")
	}
}

func TestBuild_IndexesGaplessUnderUntaggedCommits(t *testing.T) {
	var history []Commit
	for i := 9; i >= 0; i-- {
		msg := fmt.Sprintf("commit %d", i)
		if i%3 == 0 {
			msg = fmt.Sprintf("[screenshot:step-%d] commit %d", i, i)
		}
		history = append(history, Commit{Hash: fmt.Sprintf("h%d", i), Message: msg})
	}
	groups := Build(history)
	if len(groups) != 4 {
		t.Fatalf("expected 4 groups, got %d", len(groups))
	}
	for i, g := range groups {
		if g.Index != i+1 {
			t.Errorf("index %d at position %d", g.Index, i)
		}
	}
}

func TestNewCaptureSpec_Defaults(t *testing.T) {
	s := NewCaptureSpec("home", "abc", "[screenshot:home] msg")
	if s.URL != "/" {
		t.Errorf("URL default = %q, want /", s.URL)
	}
	if s.ViewportWidth != 1280 || s.ViewportHeight != 800 {
		t.Errorf("viewport default = %dx%d, want 1280x800", s.ViewportWidth, s.ViewportHeight)
	}
	if s.FullPage {
		t.Error("FullPage should default to false")
	}
	if s.Delay != 1.0 {
		t.Errorf("Delay default = %v, want 1.0", s.Delay)
	}
	if s.TitleBarStyle != "chrome" {
		t.Errorf("TitleBarStyle default = %q, want chrome", s.TitleBarStyle)
	}
}

func TestShortHash(t *testing.T) {
	if got := ShortHash("0123456789abcdef"); got != "01234567" {
		t.Errorf("ShortHash = %q", got)
	}
	if got := ShortHash("abc"); got != "abc" {
		t.Errorf("ShortHash short input = %q", got)
	}
}

func TestTotalCaptures(t *testing.T) {
	groups := Build([]Commit{
		{Hash: "b", Message: "[screenshot:x,y]"},
		{Hash: "a", Message: "[screenshot:z]"},
	})
	if n := TotalCaptures(groups); n != 3 {
		t.Errorf("TotalCaptures = %d, want 3", n)
	}
}
