package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/five82/skyward/internal/app"
)

// Version is set at build time with -ldflags "-X main.Version=...".
var Version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "", "override config path (optional)")
	prefsPath := flag.String("prefs", "", "override preferences path (optional)")
	printMode := flag.String("print", "", "print one collection and exit: today, gallery or search")
	date := flag.String("date", "", "picture date as YYYY-MM-DD (with -print today)")
	count := flag.Int("count", 0, "number of random pictures (with -print gallery)")
	query := flag.String("query", "", "image library search text (with -print search)")
	hd := flag.Bool("hd", false, "prefer HD picture URLs when printing")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println("skyward", Version)
		return 0
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	opts := app.Options{
		ConfigPath: *configPath,
		PrefsPath:  *prefsPath,
		Print:      *printMode,
		Date:       *date,
		Count:      *count,
		Query:      *query,
		HD:         *hd,
	}

	if err := app.Run(ctx, opts); err != nil {
		fmt.Fprintf(os.Stderr, "skyward: %v\n", err)
		return 1
	}
	return 0
}
