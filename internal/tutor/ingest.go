package tutor

// Ingest joins responses with the quiz key. Responses to questions the key
// does not know are dropped; the order of responses is kept.
func Ingest(q Quiz, r Responses) NormalizedQuiz {
	key := make(map[string]QuizQuestion, len(q.Questions))
	for _, qq := range q.Questions {
		key[qq.ID] = qq
	}

	n := NormalizedQuiz{
		StudentID: r.StudentID,
		QuizID:    q.QuizID,
		Questions: []NormalizedQuestion{},
	}
	for _, resp := range r.Responses {
		qq, ok := key[resp.QuestionID]
		if !ok {
			continue
		}
		n.Questions = append(n.Questions, NormalizedQuestion{
			ID:            qq.ID,
			QuestionText:  qq.Text,
			StudentAnswer: resp.Answer,
			CorrectAnswer: qq.CorrectAnswer,
			Concepts:      qq.Concepts,
		})
	}
	return n
}
