package tutor

import "github.com/victornm/tutormate/internal/llm"

func object(required []string, props map[string]any) map[string]any {
	return map[string]any{
		"type":                 "object",
		"properties":           props,
		"required":             required,
		"additionalProperties": false,
	}
}

func array(items map[string]any) map[string]any {
	return map[string]any{"type": "array", "items": items}
}

var (
	str  = map[string]any{"type": "string"}
	flag = map[string]any{"type": "boolean"}
)

var diagnosisSchema = &llm.Schema{
	Name:        "tutor-diagnosis",
	Description: "Weak concepts found in a graded quiz",
	Definition: object([]string{"weak_concepts"}, map[string]any{
		"weak_concepts": array(object([]string{"concept"}, map[string]any{
			"concept": str,
			"reason":  str,
		})),
		"summary": str,
	}),
}

var explanationsSchema = &llm.Schema{
	Name:        "tutor-explanations",
	Description: "One explanation per weak concept",
	Definition: object([]string{"explanations"}, map[string]any{
		"explanations": array(object([]string{"concept", "explanation"}, map[string]any{
			"concept":     str,
			"explanation": str,
			"example":     str,
		})),
	}),
}

var practiceSchema = &llm.Schema{
	Name:        "tutor-practice",
	Description: "Practice questions grouped by concept",
	Definition: object([]string{"practice_set"}, map[string]any{
		"practice_set": array(object([]string{"concept", "questions"}, map[string]any{
			"concept": str,
			"questions": array(object([]string{"question", "answer"}, map[string]any{
				"question": str,
				"answer":   str,
			})),
		})),
	}),
}

var chatStartSchema = &llm.Schema{
	Name:        "tutor-chat-start",
	Description: "Greeting and first question",
	Definition: object([]string{"message", "question"}, map[string]any{
		"message":  str,
		"question": str,
	}),
}

var chatTurnSchema = &llm.Schema{
	Name:        "tutor-chat-turn",
	Description: "Feedback on an answer and the next question",
	Definition: object([]string{"feedback", "next_question", "is_correct"}, map[string]any{
		"feedback":      str,
		"next_question": str,
		"is_correct":    flag,
		"concept":       str,
		"difficulty":    str,
	}),
}
