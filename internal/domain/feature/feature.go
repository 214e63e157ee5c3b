// Package feature builds the canonical feature strings that feed embedding
// and change detection. Segment order, label text and number formatting are
// part of the content-hash surface: any change here forces re-embedding of
// every entity.
package feature

import (
	"crypto/md5" //nolint:gosec // change detection, not security
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"github.com/satvik-shyam/placematch/internal/domain"
)

const segmentSeparator = " | "

// ProfileString renders a parsed profile as ordered, labeled segments.
func ProfileString(p domain.ParsedProfile) string {
	segments := []string{
		"skills: " + strings.Join(p.Skills, ", "),
		"experience: " + formatYears(p.ExperienceYears) + " years",
	}

	for _, edu := range p.Education {
		segments = append(segments, fmt.Sprintf("education: %s in %s", edu.Degree, edu.Field))
	}

	for _, exp := range p.Experience {
		if exp.Role != "" {
			segments = append(segments, "role: "+exp.Role)
		}
	}

	return strings.Join(segments, segmentSeparator)
}

// JobString renders a parsed job description as ordered, labeled segments.
// The preferred-skills segment is omitted entirely when empty.
func JobString(j domain.ParsedJob) string {
	segments := []string{
		"title: " + j.Title,
		"required skills: " + strings.Join(j.RequiredSkills, ", "),
	}

	if len(j.PreferredSkills) > 0 {
		segments = append(segments, "preferred skills: "+strings.Join(j.PreferredSkills, ", "))
	}

	if j.MaxExperience != nil {
		segments = append(segments, fmt.Sprintf("experience: %d-%d years", j.MinExperience, *j.MaxExperience))
	} else {
		segments = append(segments, fmt.Sprintf("experience: %d+ years", j.MinExperience))
	}

	return strings.Join(segments, segmentSeparator)
}

// ContentHash returns the MD5 hex digest of a canonical feature string.
// Used only to detect content changes between cache refreshes.
func ContentHash(s string) string {
	sum := md5.Sum([]byte(s)) //nolint:gosec // change detection, not security
	return hex.EncodeToString(sum[:])
}

// formatYears renders experience years without trailing zeros ("2", "2.5").
func formatYears(years float64) string {
	return strconv.FormatFloat(years, 'g', -1, 64)
}
