package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/abelbrown/booklegend/internal/aggregator"
	"github.com/abelbrown/booklegend/internal/logging"
)

func runList() {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	offset := fs.Int("offset", 0, "Number of works to skip")
	fs.Parse(os.Args[1:])

	cfg := setup()
	defer logging.Close()
	ctx, cancel := signalContext()
	defer cancel()

	st := openStore(cfg)
	defer st.Close()

	books, err := newClient(cfg).ListByCategory(ctx, aggregator.PageSize, *offset)
	if err != nil {
		log.Fatalf("list failed: %v", err)
	}
	printBooks(books, st.IsFavorite)
}

func runSearch() {
	fs := flag.NewFlagSet("search", flag.ExitOnError)
	page := fs.Int("page", 1, "Result page, starting at 1")
	fs.Parse(os.Args[1:])

	query := strings.TrimSpace(strings.Join(fs.Args(), " "))
	requireArg([]string{query}, "query")

	cfg := setup()
	defer logging.Close()
	ctx, cancel := signalContext()
	defer cancel()

	st := openStore(cfg)
	defer st.Close()

	books, err := newClient(cfg).Search(ctx, query, *page, aggregator.PageSize)
	if err != nil {
		log.Fatalf("search failed: %v", err)
	}
	printBooks(books, st.IsFavorite)
}

func runDetail() {
	fs := flag.NewFlagSet("detail", flag.ExitOnError)
	fs.Parse(os.Args[1:])
	id := requireArg(fs.Args(), "work id")

	cfg := setup()
	defer logging.Close()
	ctx, cancel := signalContext()
	defer cancel()

	d, err := newClient(cfg).Detail(ctx, id)
	if err != nil {
		log.Fatalf("detail failed: %v", err)
	}

	fmt.Printf("Title:        %s\n", d.Title)
	if d.AuthorName != "" {
		fmt.Printf("Author:       %s\n", d.AuthorName)
	}
	fmt.Printf("First pub.:   %s\n", d.Year)
	fmt.Printf("Pages:        %s\n", d.Pages)
	if d.CoverURL != "" {
		fmt.Printf("Cover:        %s\n", d.CoverURL)
	}
	fmt.Printf("\n%s\n", d.Description)
}
