package github

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sevigo/review-warden/internal/core"
)

func TestWriteScoreBar(t *testing.T) {
	tests := []struct {
		name     string
		score    int
		contains []string
	}{
		{
			name:     "high score uses green segments",
			score:    80,
			contains: []string{"🟩🟩🟩🟩🟩🟩🟩🟩⬜⬜", "Merge Score: 80/100"},
		},
		{
			name:     "mid score uses yellow segments",
			score:    65,
			contains: []string{"🟨🟨🟨🟨🟨🟨⬜⬜⬜⬜", "Merge Score: 65/100"},
		},
		{
			name:     "low score uses red segments",
			score:    20,
			contains: []string{"🟥🟥⬜⬜⬜⬜⬜⬜⬜⬜", "Merge Score: 20/100"},
		},
		{
			name:     "zero score is all empty",
			score:    0,
			contains: []string{"⬜⬜⬜⬜⬜⬜⬜⬜⬜⬜", "Merge Score: 0/100"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var sb strings.Builder
			writeScoreBar(&sb, tt.score)
			for _, want := range tt.contains {
				assert.Contains(t, sb.String(), want)
			}
		})
	}
}

func TestRenderReviewGroupsBySeverity(t *testing.T) {
	record := &core.ReviewRecord{
		RepoFullName: "acme/widgets",
		PRNumber:     7,
		HeadSHA:      "abcdef1234567890",
		ProcessingMS: 4200,
	}
	review := &core.StructuredReview{
		MergeScore: 72,
		Confidence: 0.9,
		Summary:    "Solid change overall.",
		QualityMetrics: map[string]int{
			"maintainability": 80,
			"security":        60,
		},
		Suggestions: []core.Suggestion{
			{Severity: core.SeverityLow, Type: core.SuggestionStyle, Description: "rename the variable", File: "main.go", Line: 12},
			{Severity: core.SeverityHigh, Type: core.SuggestionFix, Description: "nil pointer dereference", File: "server.go", Line: 33, Reasoning: "pr can be nil here"},
			{Severity: core.SeverityHigh, Type: core.SuggestionFix, Description: "missing error check"},
		},
	}

	body := renderReview(record, review)

	assert.Contains(t, body, "## 🤖 Automated Code Review")
	assert.Contains(t, body, "Solid change overall.")
	assert.Contains(t, body, "### 🔴 High (2)")
	assert.Contains(t, body, "### 🟢 Low (1)")
	assert.NotContains(t, body, "🟡 Medium")
	assert.Contains(t, body, "`server.go:33`: nil pointer dereference")
	assert.Contains(t, body, "pr can be nil here")
	assert.Contains(t, body, "`general`: missing error check")
	assert.Contains(t, body, "| maintainability | 80/100 |")
	assert.Contains(t, body, "Confidence: 90%")
	assert.Contains(t, body, "`abcdef1`")

	// High-severity group must render before low.
	assert.Less(t, strings.Index(body, "🔴 High"), strings.Index(body, "🟢 Low"))
}

func TestRenderReviewNoSuggestions(t *testing.T) {
	record := &core.ReviewRecord{FollowUp: true, HeadSHA: "deadbeef"}
	review := &core.StructuredReview{MergeScore: 95, Confidence: 0.8, Summary: "Looks good."}

	body := renderReview(record, review)

	assert.Contains(t, body, "## 🔄 Follow-up Code Review")
	assert.Contains(t, body, "✅ No issues found.")
}

func TestMarkerScanPrefixMatchesMarker(t *testing.T) {
	m := marker(42, 17)
	assert.True(t, strings.HasPrefix(m, markerScanPrefix(42, 17)))
	assert.False(t, strings.HasPrefix(m, markerScanPrefix(42, 18)))
	assert.False(t, strings.HasPrefix(m, markerScanPrefix(43, 17)))
}

func TestSplitFullName(t *testing.T) {
	owner, repo, err := splitFullName("acme/widgets")
	assert.NoError(t, err)
	assert.Equal(t, "acme", owner)
	assert.Equal(t, "widgets", repo)

	_, _, err = splitFullName("no-slash")
	assert.Error(t, err)

	_, _, err = splitFullName("/widgets")
	assert.Error(t, err)
}
