package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"

	"questify/internal/api"
	"questify/internal/cli"
	"questify/internal/config"
	"questify/internal/history"
)

func main() {
	log.SetOutput(os.Stdout)
	log.SetFlags(log.Ldate | log.Ltime)

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}

	server := flag.String("server", cfg.BaseURL, "Questify API base URL")
	token := flag.String("token", cfg.Token, "bearer token (defaults to QUESTIFY_TOKEN)")
	timeout := flag.Duration("timeout", cfg.HTTPTimeout, "HTTP timeout")
	dbPath := flag.String("db", cfg.HistoryPath, "local history database path (empty to disable)")
	flag.Parse()

	if *token == "" {
		fmt.Fprintln(os.Stderr, "error: a bearer token is required (set QUESTIFY_TOKEN or pass -token)")
		os.Exit(1)
	}

	info, err := api.ParseToken(*token)
	if err != nil {
		if errors.Is(err, api.ErrTokenExpired) {
			fmt.Fprintln(os.Stderr, "error: bearer token is expired, log in again")
		} else {
			fmt.Fprintln(os.Stderr, "error: malformed bearer token:", err)
		}
		os.Exit(1)
	}
	if info.Name != "" {
		log.Printf("signed in as %s", info.Name)
	}

	var store *history.Store
	if *dbPath != "" {
		store, err = history.Open(*dbPath)
		if err != nil {
			log.Printf("warning: local history disabled: %v", err)
		} else {
			defer store.Close()
		}
	}

	client := api.NewClient(*server, *token, &http.Client{Timeout: *timeout})
	if err := cli.Run(context.Background(), os.Stdin, os.Stdout, client, store); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
