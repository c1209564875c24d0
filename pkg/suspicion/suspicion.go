package suspicion

import (
	"fmt"
	"sort"
)

// Severity is an ordinal tier derived from a pair's suspicion score. Any
// decorative label belongs at the reporting boundary, not here.
type Severity int

const (
	SeverityLow Severity = iota
	SeverityMedium
	SeverityHigh
	SeverityVeryHigh
	SeverityCritical
)

// String returns the plain tier name used in stored records and output.
func (s Severity) String() string {
	switch s {
	case SeverityCritical:
		return "CRITICAL"
	case SeverityVeryHigh:
		return "VERY HIGH"
	case SeverityHigh:
		return "HIGH"
	case SeverityMedium:
		return "MEDIUM"
	default:
		return "LOW"
	}
}

// Record is one suspicious submission pair. The pair is unordered; each
// submission appears in at most one record per counterpart.
type Record struct {
	NameA    string   `json:"student1" yaml:"student1"`
	NameB    string   `json:"student2" yaml:"student2"`
	Score    int      `json:"suspicion_score" yaml:"suspicionScore"`
	Reasons  []string `json:"reasons" yaml:"reasons"`
	Severity Severity `json:"-" yaml:"-"`
	Tier     string   `json:"severity" yaml:"severity"`
}

// Scorer combines per-pair metadata signals into an additive suspicion
// score. Every weight and window is a tunable; the zero value is unusable,
// use NewScorer.
type Scorer struct {
	ExactSizeWeight int
	NearSizeWeight  int
	NearSizeWindow  int64 // bytes
	HashWeight      int
	TimeWeight      int
	TimeWindow      float64 // seconds
	Floor           int     // minimum score for a pair to be retained
}

// NewScorer returns a scorer with the standard weights.
func NewScorer() *Scorer {
	return &Scorer{
		ExactSizeWeight: 60,
		NearSizeWeight:  35,
		NearSizeWindow:  1024,
		HashWeight:      100,
		TimeWeight:      40,
		TimeWindow:      300,
		Floor:           70,
	}
}

// ScoreAll evaluates every unordered pair of submissions exactly once and
// returns the pairs at or above the retention floor, sorted by descending
// score. Signals are independent and additive; a score can exceed 100.
func (s *Scorer) ScoreAll(submissions []Metadata) []Record {
	var flagged []Record

	for i := 0; i < len(submissions); i++ {
		for j := i + 1; j < len(submissions); j++ {
			if rec, ok := s.scorePair(submissions[i], submissions[j]); ok {
				flagged = append(flagged, rec)
			}
		}
	}

	sort.SliceStable(flagged, func(a, b int) bool {
		return flagged[a].Score > flagged[b].Score
	})
	return flagged
}

// scorePair accumulates the per-pair signals. The exact and near size checks
// are mutually exclusive: the near branch requires a nonzero delta, so an
// identical size can never double-count.
func (s *Scorer) scorePair(a, b Metadata) (Record, bool) {
	score := 0
	var reasons []string

	sizeDiff := a.Size - b.Size
	if sizeDiff < 0 {
		sizeDiff = -sizeDiff
	}
	if sizeDiff == 0 {
		score += s.ExactSizeWeight
		reasons = append(reasons, "Identical file size")
	} else if sizeDiff < s.NearSizeWindow {
		score += s.NearSizeWeight
		reasons = append(reasons, fmt.Sprintf("Nearly identical size (diff: %d bytes)", sizeDiff))
	}

	if a.Hash == b.Hash {
		score += s.HashWeight
		reasons = append(reasons, "EXACT COPY - identical file hash")
	}

	timeDiff := a.Uploaded.Sub(b.Uploaded).Seconds()
	if timeDiff < 0 {
		timeDiff = -timeDiff
	}
	if timeDiff < s.TimeWindow {
		score += s.TimeWeight
		reasons = append(reasons, fmt.Sprintf("Uploaded %d minutes apart", int(timeDiff/60)))
	}

	if score < s.Floor {
		return Record{}, false
	}

	sev := TierFor(score)
	return Record{
		NameA:    a.Name,
		NameB:    b.Name,
		Score:    score,
		Reasons:  reasons,
		Severity: sev,
		Tier:     sev.String(),
	}, true
}

// TierFor maps a suspicion score to its severity tier. Scores below the
// default retention floor still map (to Low) so the function is reusable
// with a lowered floor.
func TierFor(score int) Severity {
	switch {
	case score >= 100:
		return SeverityCritical
	case score >= 90:
		return SeverityVeryHigh
	case score >= 80:
		return SeverityHigh
	case score >= 70:
		return SeverityMedium
	default:
		return SeverityLow
	}
}
