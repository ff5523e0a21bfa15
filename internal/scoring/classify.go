package scoring

// PerformanceFor maps a score percentage to its qualitative level.
func PerformanceFor(scorePct int) PerformanceLevel {
	switch {
	case scorePct >= 90:
		return PerfExcellent
	case scorePct >= 80:
		return PerfGood
	case scorePct >= 60:
		return PerfNeedsImprovement
	default:
		return PerfPoor
	}
}

// Average-minutes-per-question boundaries for the time-efficiency bands.
// These are a frozen contract: under half a minute per question is rushed,
// a narrow band up to one minute is adequate, up to two minutes is good,
// and anything more deliberate is excellent.
const (
	rushedBelowMin   = 0.5
	adequateBelowMin = 1.0
	goodBelowMin     = 2.0
)

// TimeEfficiencyFor maps total minutes spent over a question count to a
// pacing bucket. Zero questions reads as rushed (no time was meaningfully
// spent per question).
func TimeEfficiencyFor(timeSpentMinutes float64, totalQuestions int) TimeEfficiency {
	if totalQuestions <= 0 {
		return TimeRushed
	}
	avg := timeSpentMinutes / float64(totalQuestions)
	switch {
	case avg < rushedBelowMin:
		return TimeRushed
	case avg < adequateBelowMin:
		return TimeAdequate
	case avg < goodBelowMin:
		return TimeGood
	default:
		return TimeExcellent
	}
}
