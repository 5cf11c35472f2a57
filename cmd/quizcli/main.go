package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"lingoquiz"

	"github.com/spf13/pflag"
)

func main() {
	flags := pflag.NewFlagSet("quizcli", pflag.ExitOnError)
	lingoquiz.RegisterFlags(flags)
	lang := flags.String("lang", "en", "Language code for the summary and quiz (en, te, hi, ta, kn)")
	flags.Parse(os.Args[1:])

	cfg, err := lingoquiz.LoadConfig(flags)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	lingoquiz.SetVerbose(cfg.Verbose)

	language, err := lingoquiz.LookupLanguage(lingoquiz.QuizLanguages, *lang)
	if err != nil {
		log.Fatalf("%s", lingoquiz.UserMessage(err))
	}

	scores, err := lingoquiz.OpenScoreDB()
	if err != nil {
		log.Fatalf("Failed to open score database: %v", err)
	}
	defer scores.Close()

	translator := lingoquiz.NewTranslator(cfg)
	p := &player{
		content:    lingoquiz.NewWikipedia(cfg.Wiki.Endpoint, cfg.Wiki.UserAgent, cfg.HTTP.Timeout),
		translator: translator,
		manager:    lingoquiz.NewManager(lingoquiz.NewQuizGenerator(translator, nil), scores),
		lang:       language,
		in:         bufio.NewScanner(os.Stdin),
		out:        os.Stdout,
	}
	p.run(context.Background())
}

// player runs the summary and quiz flow on a terminal
type player struct {
	content    lingoquiz.ContentSource
	translator lingoquiz.Translator
	manager    *lingoquiz.Manager
	lang       lingoquiz.Language
	in         *bufio.Scanner
	out        io.Writer
}

func (p *player) prompt(format string, args ...interface{}) (string, bool) {
	fmt.Fprintf(p.out, format, args...)
	if !p.in.Scan() {
		return "", false
	}
	return strings.TrimSpace(p.in.Text()), true
}

func (p *player) run(ctx context.Context) {
	fmt.Fprintf(p.out, "🌐 Multilingual Summary & Quiz (%s)\n\n", p.lang.Name)
	for {
		topic, ok := p.prompt("🔍 Enter a topic (empty to quit): ")
		if !ok || topic == "" {
			break
		}
		if err := p.playTopic(ctx, topic); err != nil {
			fmt.Fprintf(p.out, "❌ %s\n\n", lingoquiz.UserMessage(err))
		}
	}
	p.printHistory(ctx)
}

func (p *player) playTopic(ctx context.Context, topic string) error {
	reqCtx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	titles, err := p.content.Search(reqCtx, "en", topic)
	if err != nil {
		return err
	}

	fmt.Fprintln(p.out, "🔎 Did you mean:")
	for i, t := range titles {
		fmt.Fprintf(p.out, "  %d) %s\n", i+1, t)
	}
	title := titles[0]
	if answer, ok := p.prompt("Choose 1-%d [1]: ", len(titles)); ok && answer != "" {
		if n, err := strconv.Atoi(answer); err == nil && n >= 1 && n <= len(titles) {
			title = titles[n-1]
		}
	}

	page, err := p.content.Summary(reqCtx, "en", title)
	if err != nil {
		return err
	}

	summary, _ := lingoquiz.TranslateOrOriginal(reqCtx, p.translator, page.Extract, p.lang.Code)
	fmt.Fprintf(p.out, "\n📖 Summary\n%s\n\n", summary)

	if answer, ok := p.prompt("Next ➡️ Start Quiz? [Y/n]: "); !ok || strings.EqualFold(answer, "n") {
		return nil
	}
	fmt.Fprintln(p.out, "⏳ Generating questions...")

	id, err := p.manager.Start(reqCtx, page.Extract, p.lang.Code, topic)
	if err != nil {
		return err
	}
	defer p.manager.Reset(id)

	return p.playQuiz(ctx, id)
}

func (p *player) playQuiz(ctx context.Context, id string) error {
	letters := "ABCD"
	for {
		view, err := p.manager.Snapshot(id)
		if err != nil {
			return err
		}
		if view.State == lingoquiz.StateCompleted {
			fmt.Fprintf(p.out, "🎉 Quiz Completed! Your score: %d/%d\n\n", view.Score, view.Total)
			return nil
		}

		q := view.Current
		fmt.Fprintf(p.out, "\n❓ Question %d/%d\n%s\n\n", view.Index+1, view.Total, q.Question)
		for i, option := range q.Options {
			fmt.Fprintf(p.out, "%c) %s\n", letters[i], option)
		}
		fmt.Fprintln(p.out)

		valid := letters[:len(q.Options)]
		choice := -1
		for choice < 0 {
			answer, ok := p.prompt("Your answer (%s): ", strings.Join(strings.Split(valid, ""), "/"))
			if !ok {
				return nil
			}
			answer = strings.ToUpper(answer)
			if len(answer) == 1 && strings.Contains(valid, answer) {
				choice = strings.Index(valid, answer)
			} else {
				fmt.Fprintf(p.out, "Please enter one of %s\n", valid)
			}
		}

		result, err := p.manager.SubmitChoice(ctx, id, view.Index, choice)
		if err != nil {
			return err
		}
		if result.Correct {
			fmt.Fprintln(p.out, "✅ Correct!")
		} else {
			fmt.Fprintf(p.out, "❌ Incorrect. The correct answer is: %s\n", result.CorrectAnswer)
		}
		fmt.Fprintf(p.out, "💡 Explanation: %s\n", result.Explanation)
		fmt.Fprintf(p.out, "📊 Score: %d/%d\n", result.Score, result.Answered)
		fmt.Fprintln(p.out, strings.Repeat("─", 50))
	}
}

func (p *player) printHistory(ctx context.Context) {
	entries, err := p.manager.History(ctx)
	if err != nil {
		log.Printf("Failed to load score history: %v", err)
		return
	}
	if len(entries) == 0 {
		fmt.Fprintln(p.out, "No quiz history found.")
		return
	}

	fmt.Fprintln(p.out, "\n📊 Score History")
	_, order := lingoquiz.GroupByTopic(entries)
	for i, topic := range order {
		for _, e := range entries {
			if e.Topic == topic {
				fmt.Fprintf(p.out, "%d. %s — 🏆 Score: %d/%d\n", i+1, topic, e.Score, e.Total)
			}
		}
	}
}
