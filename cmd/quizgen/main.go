package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"quizforge"
)

func main() {
	var (
		textFile = flag.String("file", "", "File with the source text (default: stdin)")
		title    = flag.String("title", "", "Quiz title (default: derived from text)")
		num      = flag.Int("n", 3, "Number of statements to generate")
		backend  = flag.String("backend", "", "Generator backend: http or openai (default: from env)")
		apiURL   = flag.String("api-url", "", "Generation API base URL (overrides GENERATION_API_URL)")
		dbPath   = flag.String("db", "", "Save the quiz to this sqlite database")
		user     = flag.String("user", "", "User id to save the quiz under (required with -db)")
		output   = flag.String("output", "", "Output file for quiz JSON (default: stdout)")
		play     = flag.Bool("play", false, "Play the quiz interactively after generating")
	)
	flag.Parse()

	cfg := quizforge.LoadConfig()
	if *backend != "" {
		cfg.GeneratorBackend = *backend
	}
	if *apiURL != "" {
		cfg.GenerationURL = *apiURL
	}

	log, err := quizforge.NewLogger(cfg.Env)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer log.Sync()

	text, err := readText(*textFile)
	if err != nil {
		log.Fatalw("failed to read input text", "error", err)
	}

	var rec *quizforge.DebugRecorder
	if !cfg.Production() {
		rec, err = quizforge.NewDebugRecorder(cfg.DebugLogDir, "quizgen-"+time.Now().Format("20060102-150405"))
		if err != nil {
			log.Warnw("debug recorder disabled", "error", err)
		} else {
			defer rec.Close()
		}
	}

	gen, err := quizforge.NewGenerator(cfg, log, rec)
	if err != nil {
		log.Fatalw("failed to build generator", "error", err)
	}

	flowOpts := []quizforge.FlowOption{quizforge.WithFlowLogger(log)}
	var store *quizforge.SQLiteStore
	if *dbPath != "" {
		if *user == "" {
			log.Fatalw("-user is required when saving with -db")
		}
		store, err = quizforge.OpenSQLiteStore(*dbPath, cfg.Policy)
		if err != nil {
			log.Fatalw("failed to open quiz database", "error", err)
		}
		defer store.Close()
		flowOpts = append(flowOpts, quizforge.WithStore(store))
	}

	flow := quizforge.NewFlow(gen, flowOpts...)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	if *title == "" {
		*title = deriveTitle(text)
	}

	result, err := flow.Generate(ctx, *user, *title, text, *num)
	if err != nil {
		log.Fatalw("failed to generate quiz", "error", err)
	}
	flow.WaitSaves()

	if *play {
		playQuiz(result.Questions)
		return
	}

	encoded, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		log.Fatalw("failed to marshal quiz", "error", err)
	}
	if *output != "" {
		if err := os.WriteFile(*output, encoded, 0644); err != nil {
			log.Fatalw("failed to write output file", "error", err)
		}
		log.Infow("quiz saved", "file", *output)
	} else {
		fmt.Println(string(encoded))
	}
}

func readText(path string) (string, error) {
	if path == "" {
		data, err := io.ReadAll(os.Stdin)
		return string(data), err
	}
	data, err := os.ReadFile(path)
	return string(data), err
}

func deriveTitle(text string) string {
	words := strings.Fields(text)
	if len(words) > 6 {
		words = words[:6]
	}
	return strings.Join(words, " ")
}

func playQuiz(questions []quizforge.QuizQuestion) {
	views := quizforge.BuildQuestionViews(questions, true)
	scanner := bufio.NewScanner(os.Stdin)
	score := 0

	for i, view := range views {
		fmt.Printf("Question %d/%d:\n", i+1, len(views))
		fmt.Printf("%s\n\n", view.Prompt)
		for _, choice := range view.Choices {
			fmt.Printf("%s) %s\n", choice.Letter, choice.Text)
		}
		fmt.Println()

		answer := -1
		for answer < 0 {
			fmt.Print("Your answer: ")
			if !scanner.Scan() {
				return
			}
			input := strings.ToUpper(strings.TrimSpace(scanner.Text()))
			if len(input) == 1 {
				idx := int(input[0] - 'A')
				if idx >= 0 && idx < len(view.Choices) {
					answer = idx
				}
			}
			if answer < 0 {
				fmt.Println("Please enter one of the listed letters")
			}
		}

		if answer == view.CorrectIndex {
			fmt.Println("Correct!")
			score++
		} else {
			correct := view.Choices[view.CorrectIndex]
			fmt.Printf("Incorrect. The true sentence is %s) %s\n", correct.Letter, correct.Text)
		}
		fmt.Println()
	}

	fmt.Printf("Final score: %d/%d\n", score, len(views))
}
