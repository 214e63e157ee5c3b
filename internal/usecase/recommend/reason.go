package recommend

import (
	"fmt"
	"math"
	"strings"

	"github.com/satvik-shyam/placematch/internal/domain"
)

// Skill-match reason buckets.
const (
	excellentSkillThreshold = 80
	goodSkillThreshold      = 50
)

// buildReason renders the human-readable justification for a scored job.
// The template is deterministic: identical scores always produce identical text.
func buildReason(sj domain.ScoredJob) string {
	parts := make([]string, 0, 3)

	parts = append(parts, fmt.Sprintf("Overall match: %d%%", int(math.Round(sj.MatchScore*100))))

	skillPct := int(math.Round(sj.SkillMatchPct))
	switch {
	case skillPct >= excellentSkillThreshold:
		parts = append(parts, fmt.Sprintf("Excellent skill match (%d%%)", skillPct))
	case skillPct >= goodSkillThreshold:
		parts = append(parts, fmt.Sprintf("Good skill match (%d%%)", skillPct))
	default:
		parts = append(parts, fmt.Sprintf("Partial skill match (%d%%)", skillPct))
	}

	if sj.ExperienceMatch {
		parts = append(parts, "Experience requirements met")
	} else {
		parts = append(parts, "Experience slightly outside range")
	}

	return strings.Join(parts, ". ") + "."
}
