package scoring

import "math"

// percent converts a correct/total pair to an integer percentage, rounding
// half away from zero (2/3 -> 67). A zero total yields 0, never a division
// by zero.
func percent(correct, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(correct) / float64(total) * 100))
}

type areaAccum struct {
	id      string
	name    string
	weight  float64
	correct int
	total   int
}

// aggregateAreas groups per-question outcomes by knowledge area. Every area
// referenced by at least one question in the exam appears in the output, in
// order of first appearance; areas the exam never references do not.
func aggregateAreas(questions []Question, correctByQ map[string]bool) []AreaScore {
	var order []string
	accum := map[string]*areaAccum{}
	for _, q := range questions {
		a, ok := accum[q.KnowledgeAreaID]
		if !ok {
			a = &areaAccum{id: q.KnowledgeAreaID, name: q.KnowledgeAreaName, weight: q.KnowledgeAreaWeight}
			accum[q.KnowledgeAreaID] = a
			order = append(order, q.KnowledgeAreaID)
		}
		a.total++
		if correctByQ[q.ID] {
			a.correct++
		}
	}

	out := make([]AreaScore, 0, len(order))
	for _, id := range order {
		a := accum[id]
		pct := percent(a.correct, a.total)
		out = append(out, AreaScore{
			AreaID:    a.id,
			Name:      a.name,
			WeightPct: a.weight,
			Correct:   a.correct,
			Total:     a.total,
			ScorePct:  pct,
			Level:     PerformanceFor(pct),
		})
	}
	return out
}

// aggregateDifficulty groups outcomes into the three fixed bands. All three
// are always present, zero-valued where the exam has no questions of that
// band. Questions carrying an unknown band are counted under medium.
func aggregateDifficulty(questions []Question, correctByQ map[string]bool) []DifficultyScore {
	correct := map[Difficulty]int{}
	total := map[Difficulty]int{}
	for _, q := range questions {
		d := q.Difficulty
		switch d {
		case DifficultyEasy, DifficultyMedium, DifficultyHard:
		default:
			d = DifficultyMedium
		}
		total[d]++
		if correctByQ[q.ID] {
			correct[d]++
		}
	}

	out := make([]DifficultyScore, 0, len(Difficulties))
	for _, d := range Difficulties {
		out = append(out, DifficultyScore{
			Difficulty: d,
			Correct:    correct[d],
			Total:      total[d],
			ScorePct:   percent(correct[d], total[d]),
		})
	}
	return out
}
