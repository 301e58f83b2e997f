package github

import (
	"fmt"
	"sort"
	"strings"

	"github.com/sevigo/review-warden/internal/core"
)

// renderReview builds the Markdown body of a posted review comment: score
// bar, summary, quality metrics, severity-grouped suggestions, and a
// metadata footer.
func renderReview(record *core.ReviewRecord, review *core.StructuredReview) string {
	var sb strings.Builder

	if record.FollowUp {
		sb.WriteString("## 🔄 Follow-up Code Review\n\n")
	} else {
		sb.WriteString("## 🤖 Automated Code Review\n\n")
	}

	writeScoreBar(&sb, review.MergeScore)
	sb.WriteString("\n")

	if review.Summary != "" {
		sb.WriteString(review.Summary)
		sb.WriteString("\n\n")
	}

	writeQualityMetrics(&sb, review.QualityMetrics)
	writeSuggestions(&sb, review.Suggestions)
	writeFooter(&sb, record, review)

	return sb.String()
}

// writeScoreBar renders the merge score as a ten-segment bar, e.g.
// "🟩🟩🟩🟩🟩🟩🟨⬜⬜⬜ **Merge Score: 65/100**".
func writeScoreBar(sb *strings.Builder, score int) {
	filled := score / 10
	segment := "🟩"
	switch {
	case score < 40:
		segment = "🟥"
	case score < 70:
		segment = "🟨"
	}
	for i := 0; i < 10; i++ {
		if i < filled {
			sb.WriteString(segment)
		} else {
			sb.WriteString("⬜")
		}
	}
	fmt.Fprintf(sb, " **Merge Score: %d/100**\n", score)
}

func writeQualityMetrics(sb *strings.Builder, metrics map[string]int) {
	if len(metrics) == 0 {
		return
	}
	names := make([]string, 0, len(metrics))
	for name := range metrics {
		names = append(names, name)
	}
	sort.Strings(names)

	sb.WriteString("| Metric | Score |\n|--------|-------|\n")
	for _, name := range names {
		fmt.Fprintf(sb, "| %s | %d/100 |\n", name, metrics[name])
	}
	sb.WriteString("\n")
}

func writeSuggestions(sb *strings.Builder, suggestions []core.Suggestion) {
	if len(suggestions) == 0 {
		sb.WriteString("✅ No issues found.\n\n")
		return
	}

	order := []string{core.SeverityHigh, core.SeverityMedium, core.SeverityLow}
	headings := map[string]string{
		core.SeverityHigh:   "🔴 High",
		core.SeverityMedium: "🟡 Medium",
		core.SeverityLow:    "🟢 Low",
	}

	for _, severity := range order {
		var group []core.Suggestion
		for _, s := range suggestions {
			if s.Severity == severity {
				group = append(group, s)
			}
		}
		if len(group) == 0 {
			continue
		}
		fmt.Fprintf(sb, "### %s (%d)\n\n", headings[severity], len(group))
		for _, s := range group {
			writeSuggestion(sb, s)
		}
	}
}

func writeSuggestion(sb *strings.Builder, s core.Suggestion) {
	location := "general"
	if s.File != "" {
		location = s.File
		if s.Line > 0 {
			location = fmt.Sprintf("%s:%d", s.File, s.Line)
		}
	}
	fmt.Fprintf(sb, "- **[%s]** `%s`: %s\n", s.Type, location, s.Description)
	if s.Reasoning != "" {
		fmt.Fprintf(sb, "  - %s\n", s.Reasoning)
	}
	if s.SuggestedCode != "" {
		sb.WriteString("\n  ```suggestion\n")
		for _, line := range strings.Split(strings.TrimRight(s.SuggestedCode, "\n"), "\n") {
			sb.WriteString("  " + line + "\n")
		}
		sb.WriteString("  ```\n")
	}
	sb.WriteString("\n")
}

func writeFooter(sb *strings.Builder, record *core.ReviewRecord, review *core.StructuredReview) {
	sb.WriteString("---\n")
	fmt.Fprintf(sb, "<sub>Confidence: %.0f%% · Commit: `%s` · Processing time: %dms</sub>\n",
		review.Confidence*100, shortSHA(record.HeadSHA), record.ProcessingMS)
}

func shortSHA(sha string) string {
	if len(sha) > 7 {
		return sha[:7]
	}
	return sha
}
