package scoring

// EvaluateQuestion decides whether one question was answered correctly: the
// selected IDs must equal, as a set, the IDs of the candidate answers flagged
// correct. No partial credit. An empty selection is incorrect, as is any
// selection containing an ID the question does not own (unknown IDs simply
// fail to match; scoring never fails on malformed input so an attempt is not
// lost).
func EvaluateQuestion(q Question, selectedIDs []string) bool {
	correct := correctAnswerSet(q)
	if len(correct) == 0 {
		// No answer key defined: correctness is vacuously false.
		return false
	}
	selected := toSet(selectedIDs)
	if len(selected) == 0 {
		return false
	}
	return setEqual(correct, selected)
}

func correctAnswerSet(q Question) map[string]struct{} {
	m := make(map[string]struct{})
	for _, a := range q.Answers {
		if a.IsCorrect {
			m[a.ID] = struct{}{}
		}
	}
	return m
}

func toSet(ids []string) map[string]struct{} {
	m := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		m[id] = struct{}{}
	}
	return m
}

func setEqual(a, b map[string]struct{}) bool {
	if len(a) != len(b) {
		return false
	}
	for k := range a {
		if _, ok := b[k]; !ok {
			return false
		}
	}
	return true
}
