package game

import "github.com/victornm/tutormate/internal/domain"

// DefaultCatalog returns the built-in rotation. Append new games at the end.
func DefaultCatalog() *Catalog {
	games := make([]domain.GameDefinition, 0, 20)
	games = append(games, mcqSets...)
	games = append(games, logicPuzzles...)
	games = append(games, relationPuzzles...)
	games = append(games, shapeGames...)
	games = append(games, wordGames...)
	return MustCatalog(games...)
}

var mcqSets = []domain.GameDefinition{
	{
		ID:   "mcq_science",
		Kind: domain.GameKindMCQSet,
		Items: []domain.MCQQuestion{
			{Text: "Which gas is most abundant in the Earth's atmosphere?", Options: []string{"Oxygen", "Nitrogen", "Carbon Dioxide", "Argon"}, Correct: "Nitrogen"},
			{Text: "What is the chemical symbol for Gold?", Options: []string{"Au", "Ag", "Fe", "Pb"}, Correct: "Au"},
			{Text: "What is the powerhouse of the cell?", Options: []string{"Nucleus", "Mitochondria", "Ribosome", "Endoplasmic Reticulum"}, Correct: "Mitochondria"},
		},
	},
	{
		ID:   "mcq_math",
		Kind: domain.GameKindMCQSet,
		Items: []domain.MCQQuestion{
			{Text: "A train running at 60km/hr crosses a pole in 9 seconds. What is the length of the train?", Options: []string{"120m", "150m", "180m", "324m"}, Correct: "150m"},
			{Text: "What is the square root of 144?", Options: []string{"10", "11", "12", "14"}, Correct: "12"},
			{Text: "If x + y = 10 and x - y = 2, what is x?", Options: []string{"4", "5", "6", "8"}, Correct: "6"},
		},
	},
	{
		ID:   "mcq_history",
		Kind: domain.GameKindMCQSet,
		Items: []domain.MCQQuestion{
			{Text: "Who was the first President of the United States?", Options: []string{"Thomas Jefferson", "George Washington", "Abraham Lincoln", "John Adams"}, Correct: "George Washington"},
			{Text: "In which year did World War II end?", Options: []string{"1942", "1945", "1948", "1950"}, Correct: "1945"},
			{Text: "Who discovered America?", Options: []string{"Christopher Columbus", "Vasco da Gama", "Marco Polo", "James Cook"}, Correct: "Christopher Columbus"},
		},
	},
	{
		ID:   "mcq_tech",
		Kind: domain.GameKindMCQSet,
		Items: []domain.MCQQuestion{
			{Text: "What does CPU stand for?", Options: []string{"Central Processing Unit", "Computer Personal Unit", "Central Process Utility", "Central Processor Unit"}, Correct: "Central Processing Unit"},
			{Text: "Which language is known as the backbone of the web?", Options: []string{"Python", "Java", "HTML", "C++"}, Correct: "HTML"},
			{Text: "What does 'HTTP' stand for?", Options: []string{"HyperText Transfer Protocol", "High Transfer Text Protocol", "HyperText Transmission Protocol", "HyperText Transfer Platform"}, Correct: "HyperText Transfer Protocol"},
		},
	},
	{
		ID:   "mcq_vocab",
		Kind: domain.GameKindMCQSet,
		Items: []domain.MCQQuestion{
			{Text: "What is the synonym of 'Happy'?", Options: []string{"Sad", "Joyful", "Angry", "Bored"}, Correct: "Joyful"},
			{Text: "What is the antonym of 'Ancient'?", Options: []string{"Old", "Modern", "Antique", "Past"}, Correct: "Modern"},
			{Text: "Choose the correct spelling:", Options: []string{"Recieve", "Receive", "Riceive", "Receve"}, Correct: "Receive"},
		},
	},
}

var logicPuzzles = []domain.GameDefinition{
	{
		ID:       "logic_painting",
		Kind:     domain.GameKindLogicPuzzle,
		Question: "A man looks at a painting in a museum and says, 'Brothers and sisters I have none, but that man's father is my father's son.' Who is in the painting?",
		Options:  []string{"His son", "His father", "Himself", "His nephew"},
		Answer:   "His son",
	},
	{
		ID:       "logic_boat",
		Kind:     domain.GameKindLogicPuzzle,
		Question: "You see a boat filled with people, yet there isn't a single person on board. How is that possible?",
		Options:  []string{"It's a ghost ship", "They are all married", "It's a model boat", "They are invisible"},
		Answer:   "They are all married",
	},
	{
		ID:       "logic_piano",
		Kind:     domain.GameKindLogicPuzzle,
		Question: "I have keys but no locks. I have a space but no room. You can enter, but can't go outside. What am I?",
		Options:  []string{"A Piano", "A Keyboard", "A Map", "A Crypt"},
		Answer:   "A Keyboard",
	},
}

var relationPuzzles = []domain.GameDefinition{
	{
		ID:       "relation_photo",
		Kind:     domain.GameKindLogicPuzzle,
		Question: "Pointing to a photograph, a lady tells Pramod, 'I am the only daughter of this lady and her son is your maternal uncle.' How is the speaker related to Pramod's father?",
		Options:  []string{"Sister-in-law", "Wife", "Sister", "Mother"},
		Answer:   "Wife",
	},
	{
		ID:       "relation_girl_boy",
		Kind:     domain.GameKindLogicPuzzle,
		Question: "A girl introduced a boy as the son of the daughter of the father of her uncle. The boy is the girl's...",
		Options:  []string{"Brother", "Uncle", "Nephew", "Son"},
		Answer:   "Brother",
	},
	{
		ID:       "relation_husband",
		Kind:     domain.GameKindLogicPuzzle,
		Question: "If P is the husband of Q and R is the mother of S and Q, what is R to P?",
		Options:  []string{"Mother", "Sister", "Aunt", "Mother-in-law"},
		Answer:   "Mother-in-law",
	},
}

var shapeGames = []domain.GameDefinition{
	{
		ID:       "shape_triangle",
		Kind:     domain.GameKindShapeCount,
		Question: "How many triangles are in this image?",
		Image:    "/shapes_triangle_1.png",
		Input:    "number",
		Answer:   "8",
	},
	{
		ID:       "shape_square",
		Kind:     domain.GameKindShapeCount,
		Question: "How many squares are in this image?",
		Image:    "/shapes_squares_1.png",
		Input:    "number",
		Answer:   "10",
	},
	{
		ID:       "shape_circle",
		Kind:     domain.GameKindShapeCount,
		Question: "How many circles are in this image?",
		Image:    "/shapes_circles_1.png",
		Input:    "number",
		Answer:   "7",
	},
}

var wordGames = []domain.GameDefinition{
	{
		ID:       "word_scramble_1",
		Kind:     domain.GameKindWordScramble,
		Question: "Unscramble this word: P H Y O S H I L O S",
		Letters:  "PHYOSHILOS",
		Input:    "text",
		Answer:   "PHILOSOPHY",
	},
	{
		ID:       "word_scramble_2",
		Kind:     domain.GameKindWordScramble,
		Question: "Unscramble this word: Y M O N O R T S A",
		Letters:  "YMONORTSA",
		Input:    "text",
		Answer:   "ASTRONOMY",
	},
	{
		ID:       "word_scramble_3",
		Kind:     domain.GameKindWordScramble,
		Question: "Unscramble this word: E R U T C E T I H C R A",
		Letters:  "ERUTCETIHCRA",
		Input:    "text",
		Answer:   "ARCHITECTURE",
	},
	{
		ID:       "sentence_1",
		Kind:     domain.GameKindSentenceBuilder,
		Question: "Form a correct sentence:",
		Words:    []string{"The", "quick", "brown", "fox", "jumps", "over", "the", "lazy", "dog"},
		Answer:   "The quick brown fox jumps over the lazy dog",
	},
	{
		ID:       "sentence_2",
		Kind:     domain.GameKindSentenceBuilder,
		Question: "Form a correct sentence:",
		Words:    []string{"makes", "Practice", "perfect", "man", "a"},
		Answer:   "Practice makes a man perfect",
	},
	{
		ID:       "sentence_3",
		Kind:     domain.GameKindSentenceBuilder,
		Question: "Form a correct sentence:",
		Words:    []string{"louder", "Actions", "words", "speak", "than"},
		Answer:   "Actions speak louder than words",
	},
}
