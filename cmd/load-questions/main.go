package main

import (
	"bufio"
	"flag"
	"log"
	"os"
	"strings"

	"whos-who/internal/config"
	"whos-who/internal/db"
)

func main() {
	filePath := flag.String("file", "questions.txt", "path to questions file, one question per line")
	flag.Parse()

	if err := config.LoadDotEnv(".env"); err != nil {
		log.Printf("failed to load .env: %v", err)
	}

	conn, err := db.Open(db.PoolSettings{})
	if err != nil {
		log.Fatalf("database connection failed: %v", err)
	}
	if err := db.Migrate(conn); err != nil {
		log.Fatalf("database migration failed: %v", err)
	}

	questions, err := readQuestions(*filePath)
	if err != nil {
		log.Fatalf("failed to read questions: %v", err)
	}

	inserted := 0
	for _, text := range questions {
		entry := db.QuestionLibrary{Text: text}
		if err := conn.FirstOrCreate(&entry, db.QuestionLibrary{Text: text}).Error; err != nil {
			log.Fatalf("failed to upsert question: %v", err)
		}
		inserted++
	}

	log.Printf("loaded %d questions", inserted)
}

func readQuestions(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var questions []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		questions = append(questions, text)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return questions, nil
}
