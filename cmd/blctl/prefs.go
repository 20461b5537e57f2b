package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/abelbrown/booklegend/internal/aggregator"
	"github.com/abelbrown/booklegend/internal/logging"
)

func runFavorites() {
	fs := flag.NewFlagSet("favorites", flag.ExitOnError)
	fs.Parse(os.Args[1:])

	cfg := setup()
	defer logging.Close()
	ctx, cancel := signalContext()
	defer cancel()

	st := openStore(cfg)
	defer st.Close()

	agg := aggregator.New(newClient(cfg), st, aggregator.Options{
		FavoritesConcurrency: cfg.FavoritesConcurrency,
	})

	runCtx, stop := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		agg.Run(runCtx)
		close(done)
	}()

	// First settled state of the favorites screen.
	var view aggregator.ListView
	for v := range agg.Favorites().Subscribe(runCtx) {
		if v.Kind != aggregator.Loading {
			view = v
			break
		}
	}
	stop()
	<-done

	switch view.Kind {
	case aggregator.Empty:
		fmt.Println("No favorites.")
	case aggregator.Error:
		log.Fatalf("favorites failed: %s", view.Message)
	case aggregator.Success:
		printBooks(view.Data, nil)
		if missing := len(st.Favorites()) - len(view.Data); missing > 0 {
			fmt.Fprintf(os.Stderr, "(%d favorites could not be fetched)\n", missing)
		}
	default:
		// Interrupted before the fan-out settled.
		os.Exit(130)
	}
}

func runFavorite() {
	fs := flag.NewFlagSet("favorite", flag.ExitOnError)
	fs.Parse(os.Args[1:])
	id := requireArg(fs.Args(), "work id")

	cfg := setup()
	defer logging.Close()

	st := openStore(cfg)
	defer st.Close()

	favs, err := st.ToggleFavorite(context.Background(), id)
	if err != nil {
		log.Fatalf("toggle failed: %v", err)
	}
	if st.IsFavorite(id) {
		fmt.Printf("Added %s (%d favorites)\n", id, len(favs))
	} else {
		fmt.Printf("Removed %s (%d favorites)\n", id, len(favs))
	}
}

func runTheme() {
	fs := flag.NewFlagSet("theme", flag.ExitOnError)
	fs.Parse(os.Args[1:])

	cfg := setup()
	defer logging.Close()

	st := openStore(cfg)
	defer st.Close()

	dark := st.DarkMode()
	if fs.NArg() > 0 {
		switch fs.Arg(0) {
		case "dark":
			dark = true
		case "light":
			dark = false
		case "toggle":
			dark = !dark
		default:
			fmt.Fprintf(os.Stderr, "error: theme must be dark, light or toggle, got %q\n", fs.Arg(0))
			os.Exit(2)
		}
		if err := st.SetDarkMode(context.Background(), dark); err != nil {
			log.Fatalf("set theme failed: %v", err)
		}
	}

	if dark {
		fmt.Println("dark")
	} else {
		fmt.Println("light")
	}
}
