// Package scoring is the QuizForce exam scoring engine: a pure,
// deterministic aggregation over one attempt's questions and submitted
// answers. It performs no I/O, holds no state between calls, and never
// fails on degenerate input; callers persist the derived fields onto the
// attempt record and render the rest.
package scoring

import "sort"

// ComputeResults grades one completed attempt. It sequences answer
// evaluation, aggregation across knowledge areas and difficulty bands, and
// qualitative classification, returning a Results value that retains no
// references to its inputs.
//
// Degenerate inputs (no questions, no submitted answers, questions without
// a defined correct answer, selections referencing unknown IDs) produce a
// well-formed zero-or-low score rather than an error.
func ComputeResults(questions []Question, submitted []SubmittedAnswer, attempt AttemptInfo, passingThresholdPct int) Results {
	// Latest submission per question wins; persistence upserts per question
	// so duplicates only occur on replayed inputs.
	selectedByQ := make(map[string][]string, len(submitted))
	for _, s := range submitted {
		selectedByQ[s.QuestionID] = s.SelectedAnswerIDs
	}

	ordered := sortByPosition(questions)
	correctByQ := make(map[string]bool, len(ordered))
	correctCount := 0
	perQuestion := make([]QuestionResult, 0, len(ordered))
	for _, q := range ordered {
		selected := selectedByQ[q.ID]
		ok := EvaluateQuestion(q, selected)
		correctByQ[q.ID] = ok
		if ok {
			correctCount++
		}
		perQuestion = append(perQuestion, QuestionResult{
			QuestionID:        q.ID,
			Position:          q.Position,
			Correct:           ok,
			SelectedAnswerIDs: copyIDs(selected),
		})
	}

	total := len(ordered)
	scorePct := percent(correctCount, total)

	return Results{
		AttemptID:      attempt.ID,
		ScorePct:       scorePct,
		CorrectAnswers: correctCount,
		TotalQuestions: total,
		Passed:         scorePct >= passingThresholdPct,
		Questions:      perQuestion,
		Areas:          aggregateAreas(ordered, correctByQ),
		Difficulty:     aggregateDifficulty(ordered, correctByQ),
		Performance:    PerformanceFor(scorePct),
		TimeEfficiency: TimeEfficiencyFor(attempt.TimeSpentMinutes, total),
	}
}

// sortByPosition returns a position-ordered copy; ties keep input order.
func sortByPosition(questions []Question) []Question {
	out := make([]Question, len(questions))
	copy(out, questions)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out
}

func copyIDs(ids []string) []string {
	if len(ids) == 0 {
		return nil
	}
	out := make([]string, len(ids))
	copy(out, ids)
	return out
}
