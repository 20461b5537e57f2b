// Command blctl is the BookLegend command-line companion: it browses the
// catalog and edits preferences without starting the TUI.
//
// Usage:
//
//	blctl                       Show help
//	blctl list [--offset N]     One page of the fiction category
//	blctl search <query>        One page of search results
//	blctl detail <id>           Full record of one work
//	blctl favorites             Resolve and print the favorite set
//	blctl favorite <id>         Toggle a favorite
//	blctl theme [dark|light|toggle]
package main

import (
	"fmt"
	"os"
)

const usage = `blctl - BookLegend catalog & preferences CLI

Usage:
  blctl <command> [flags]

Commands:
  list        One page of the fiction category (--offset)
  search      Search the catalog (--page)
  detail      Show the full record of a work
  favorites   Resolve and print favorite books
  favorite    Toggle a work in the favorite set
  theme       Show or set the theme (dark, light, toggle)

Environment:
  BOOKLEGEND_DATA_DIR      Data directory (default: ~/.booklegend)
  BOOKLEGEND_API_BASE_URL  Catalog base URL (default: https://openlibrary.org)
  BOOKLEGEND_LOG_LEVEL     Log level for <data-dir>/logs (default: info)

Run 'blctl <command> -h' for command-specific help.
`

func main() {
	if len(os.Args) < 2 {
		fmt.Print(usage)
		os.Exit(0)
	}

	cmd := os.Args[1]
	// Strip the program name + subcommand so flag sets see only their flags
	os.Args = os.Args[1:]

	switch cmd {
	case "list":
		runList()
	case "search":
		runSearch()
	case "detail":
		runDetail()
	case "favorites":
		runFavorites()
	case "favorite":
		runFavorite()
	case "theme":
		runTheme()
	case "-h", "--help", "help":
		fmt.Print(usage)
	default:
		fmt.Fprintf(os.Stderr, "blctl: unknown command %q\n\n", cmd)
		fmt.Print(usage)
		os.Exit(1)
	}
}
