package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"

	"questify/internal/admin"
	"questify/internal/api"
	"questify/internal/config"
	"questify/internal/history"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}

	server := flag.String("server", cfg.BaseURL, "Questify API base URL")
	token := flag.String("token", cfg.Token, "bearer token (defaults to QUESTIFY_TOKEN)")
	timeout := flag.Duration("timeout", cfg.HTTPTimeout, "HTTP timeout")
	dbPath := flag.String("db", cfg.HistoryPath, "local snapshot database path")
	classID := flag.String("class", "", "filter by class id")
	studentID := flag.String("student", "", "filter by student id")
	assignmentID := flag.String("assignment", "", "filter by assignment id")
	days := flag.Int("days", 0, "only include the last N days in reports")
	format := flag.String("format", api.ExportCSV, "export format: json, csv, ednet-basic or ednet")
	outDir := flag.String("out", ".", "directory for export downloads")
	offline := flag.Bool("offline", false, "read responses from the local snapshot")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: questify-admin [flags] <report|responses|snapshot|export|leaderboard>")
		os.Exit(1)
	}

	var store *history.Store
	if *dbPath != "" {
		store, err = history.Open(*dbPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, "error:", err)
			os.Exit(1)
		}
		defer store.Close()
	}

	client := api.NewClient(*server, *token, &http.Client{Timeout: *timeout})
	err = admin.Run(context.Background(), os.Stdout, client, store, admin.Options{
		Command:      flag.Arg(0),
		ClassID:      *classID,
		StudentID:    *studentID,
		AssignmentID: *assignmentID,
		Days:         *days,
		Format:       *format,
		OutDir:       *outDir,
		Offline:      *offline,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
