package main

import (
	"log"
	"net/http"
	"os"
	"time"

	"lingoquiz"

	"github.com/spf13/pflag"
)

func main() {
	flags := pflag.NewFlagSet("webserver", pflag.ExitOnError)
	lingoquiz.RegisterFlags(flags)
	flags.Parse(os.Args[1:])

	cfg, err := lingoquiz.LoadConfig(flags)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	lingoquiz.SetVerbose(cfg.Verbose)

	scores, err := lingoquiz.OpenScoreDB()
	if err != nil {
		log.Fatalf("Failed to open score database: %v", err)
	}
	defer scores.Close()

	translator := lingoquiz.NewTranslator(cfg)
	generator := lingoquiz.NewQuizGenerator(translator, nil)
	manager := lingoquiz.NewManager(generator, scores)

	server, err := NewServer(
		lingoquiz.NewWikipedia(cfg.Wiki.Endpoint, cfg.Wiki.UserAgent, cfg.HTTP.Timeout),
		translator,
		lingoquiz.NewGoogleSpeech(cfg.Speech, cfg.HTTP.Timeout),
		manager,
		cfg.Session.Secret,
	)
	if err != nil {
		log.Fatalf("Failed to create server: %v", err)
	}

	httpServer := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           server,
		ReadHeaderTimeout: 10 * time.Second,
	}

	log.Printf("Starting server on %s (translator: %s)", cfg.HTTP.Addr, cfg.Translator.Provider)
	log.Fatal(httpServer.ListenAndServe())
}
