package cli

import "quiz-arena-service/internal/domain"

// sampleCategories and sampleQuestions provide minimal content for running
// without postgres; swap in the database-backed stores in production.
func sampleCategories() []domain.Category {
	return []domain.Category{
		{ID: "general", Name: "General Knowledge", Active: true},
		{ID: "science", Name: "Science", Active: true},
	}
}

func sampleQuestions() []domain.Question {
	q := func(id, category, text string, options []string, answer string, difficulty domain.Difficulty) domain.Question {
		return domain.Question{
			ID:               id,
			CategoryID:       category,
			Text:             text,
			Options:          options,
			CorrectAnswer:    answer,
			Points:           10,
			TimeLimitSeconds: 30,
			Difficulty:       difficulty,
			Active:           true,
		}
	}
	return []domain.Question{
		q("g1", "general", "What is the capital of France?", []string{"Berlin", "Paris", "Madrid", "Rome"}, "Paris", domain.DifficultyEasy),
		q("g2", "general", "What is the largest ocean on Earth?", []string{"Atlantic", "Indian", "Arctic", "Pacific"}, "Pacific", domain.DifficultyEasy),
		q("g3", "general", "How many continents are there?", []string{"5", "6", "7", "8"}, "7", domain.DifficultyEasy),
		q("g4", "general", "What is the capital of Japan?", []string{"Seoul", "Beijing", "Tokyo", "Bangkok"}, "Tokyo", domain.DifficultyEasy),
		q("g5", "general", "Which country is known as the Land of the Rising Sun?", []string{"China", "Japan", "Korea", "Thailand"}, "Japan", domain.DifficultyMedium),
		q("g6", "general", "What is the longest river in the world?", []string{"Amazon", "Nile", "Yangtze", "Mississippi"}, "Nile", domain.DifficultyMedium),
		q("g7", "general", "In which year did the Berlin Wall fall?", []string{"1987", "1989", "1991", "1993"}, "1989", domain.DifficultyMedium),
		q("g8", "general", "What currency is used in Switzerland?", []string{"Euro", "Krone", "Franc", "Pound"}, "Franc", domain.DifficultyMedium),
		q("g9", "general", "Which desert is the largest in the world?", []string{"Gobi", "Sahara", "Antarctic", "Arabian"}, "Antarctic", domain.DifficultyHard),
		q("g10", "general", "Who wrote 'One Hundred Years of Solitude'?", []string{"Borges", "Garcia Marquez", "Neruda", "Allende"}, "Garcia Marquez", domain.DifficultyHard),
		q("g11", "general", "What is the smallest country in the world?", []string{"Monaco", "Malta", "Vatican City", "San Marino"}, "Vatican City", domain.DifficultyEasy),
		q("g12", "general", "Which ancient wonder stood in Alexandria?", []string{"Colossus", "Lighthouse", "Hanging Gardens", "Mausoleum"}, "Lighthouse", domain.DifficultyHard),
		q("s1", "science", "Which planet is known as the Red Planet?", []string{"Earth", "Venus", "Mars", "Jupiter"}, "Mars", domain.DifficultyEasy),
		q("s2", "science", "What is the chemical symbol for water?", []string{"H2O", "CO2", "O2", "NaCl"}, "H2O", domain.DifficultyEasy),
		q("s3", "science", "What gas do plants absorb from the atmosphere?", []string{"Oxygen", "Nitrogen", "Carbon Dioxide", "Hydrogen"}, "Carbon Dioxide", domain.DifficultyMedium),
		q("s4", "science", "What is the closest star to Earth?", []string{"Proxima Centauri", "Sirius", "The Sun", "Alpha Centauri"}, "The Sun", domain.DifficultyMedium),
	}
}
