package server

import (
	"log"

	"whos-who/internal/db"

	"gorm.io/gorm"
)

// builtinQuestions is the fallback corpus, used whenever the database
// library is missing or empty.
func builtinQuestions() []string {
	return []string{
		"What would they take to a deserted island?",
		"What is their dream job?",
		"What song do they secretly love?",
		"What would they do with a million euros?",
		"What is their favorite food?",
		"What superpower would they pick?",
		"What makes them laugh the hardest?",
		"What is their worst habit?",
		"Where would they travel first if money did not matter?",
		"What would they be famous for?",
		"What animal fits their personality?",
		"What do they do on a free Sunday?",
		"What would they never eat?",
		"What movie could they watch over and over?",
		"What was their favorite subject in school?",
		"What would they save first from a burning house?",
		"What is their hidden talent?",
		"What do they complain about the most?",
		"What would their autobiography be called?",
		"What is the first thing they do in the morning?",
		"What game would they always win?",
		"What would they order at a fancy restaurant?",
		"What chore do they avoid at all costs?",
		"What historical era would suit them?",
		"What would they do if they were invisible for a day?",
		"What is their comfort drink?",
		"What would surprise strangers about them?",
		"What three words describe them best?",
	}
}

// loadQuestionLibrary prefers the database-backed corpus and falls back to
// the built-in list when the table is empty or unreachable.
func loadQuestionLibrary(conn *gorm.DB) []string {
	if conn == nil {
		return builtinQuestions()
	}
	var records []db.QuestionLibrary
	if err := conn.Order("id asc").Find(&records).Error; err != nil {
		log.Printf("question library unavailable, using builtin corpus error=%v", err)
		return builtinQuestions()
	}
	if len(records) == 0 {
		return builtinQuestions()
	}
	questions := make([]string, 0, len(records))
	for _, record := range records {
		questions = append(questions, record.Text)
	}
	log.Printf("question library loaded count=%d", len(questions))
	return questions
}

// drawQuestions samples count distinct prompts uniformly without
// replacement, reshuffling the corpus for every draw.
func (s *Server) drawQuestions(count int) []string {
	pool := s.rand.shuffledStrings(s.questions)
	if count > len(pool) {
		count = len(pool)
	}
	return pool[:count]
}
