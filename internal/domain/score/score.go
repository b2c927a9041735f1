package score

import "math"

// Relevance thresholds. Scores live on a 0..100 scale.
const (
	// MinAdmission is the lowest aggregated score a scored record may carry and still be returned.
	MinAdmission = 15.0
	// SimilarityThreshold is the trigram similarity (0..1) above which a text strategy matches.
	SimilarityThreshold = 0.3
	// PhoneticFloor is the phonetic overlap score a record must exceed to match.
	PhoneticFloor = 35.0
	// Max is the upper bound of the scale.
	Max = 100.0
)

// Quality buckets, display only.
const (
	QualityVeryHigh = "Very High"
	QualityHigh     = "High"
	QualityMedium   = "Medium"
	QualityLow      = "Low"
)

// Quality labels a score for display. It never affects filtering or ordering.
func Quality(s float64) string {
	switch {
	case s >= 80:
		return QualityVeryHigh
	case s >= 60:
		return QualityHigh
	case s >= 40:
		return QualityMedium
	default:
		return QualityLow
	}
}

// Clamp keeps s within [0, Max]. NaN becomes 0.
func Clamp(s float64) float64 {
	if math.IsNaN(s) || s < 0 {
		return 0
	}
	if s > Max {
		return Max
	}
	return s
}

// Admitted reports whether a record passes the admission rule.
// A record without a score has no relevance signal and is always admitted.
func Admitted(s *float64) bool {
	return s == nil || *s >= MinAdmission
}
