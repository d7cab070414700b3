// Package main provides the CLI entry point for rss-librarian.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/alecthomas/kong"

	"github.com/thefranke/rss-librarian/internal/broadcast"
	"github.com/thefranke/rss-librarian/internal/config"
	"github.com/thefranke/rss-librarian/internal/extract"
	"github.com/thefranke/rss-librarian/internal/feed"
	"github.com/thefranke/rss-librarian/internal/maintenance"
	"github.com/thefranke/rss-librarian/internal/store"
	"github.com/thefranke/rss-librarian/internal/token"
	pkghttp "github.com/thefranke/rss-librarian/pkg/http"
)

// CLI structure
var CLI struct {
	Config string `help:"Configuration file path" default:"librarian.json"`
	Debug  bool   `help:"Enable debug logging" default:"false"`

	Add struct {
		ID  string `arg:"" help:"Subscription token"`
		URL string `arg:"" help:"Article URL to save"`
	} `cmd:"add" help:"Save an article into a feed."`

	Remove struct {
		ID  string `arg:"" help:"Subscription token"`
		URL string `arg:"" help:"Article URL to drop"`
	} `cmd:"remove" help:"Remove an article from a feed."`

	List struct {
		ID string `arg:"" help:"Subscription token"`
	} `cmd:"list" help:"List the articles saved in a feed."`

	FeedURL struct {
		ID string `arg:"" help:"Subscription token"`
	} `cmd:"feed-url" help:"Print the feed and personal URLs for a token."`

	Token struct{} `cmd:"token" help:"Generate a new subscription token."`

	Stats struct{} `cmd:"stats" help:"Print instance statistics."`

	Sweep struct {
		DryRun      bool `help:"List deletion candidates without deleting" default:"false"`
		Interactive bool `help:"Review candidates interactively before deleting" default:"false"`
	} `cmd:"sweep" help:"Delete abandoned and bogus feeds."`

	Broadcast struct {
		AdminID string `arg:"" help:"Admin token"`
		Message string `arg:"" help:"Notice text"`
	} `cmd:"broadcast" help:"Prepend a notice item to every feed."`
}

func main() {
	ctx := kong.Parse(&CLI)

	// Configure logging level based on debug flag
	logLevel := slog.LevelWarn
	if CLI.Debug {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})))

	switch ctx.Command() {
	case "add <id> <url>":
		runAdd(CLI.Add.ID, CLI.Add.URL)

	case "remove <id> <url>":
		runRemove(CLI.Remove.ID, CLI.Remove.URL)

	case "list <id>":
		runList(CLI.List.ID)

	case "feed-url <id>":
		runFeedURL(CLI.FeedURL.ID)

	case "token":
		runToken()

	case "stats":
		runStats()

	case "sweep":
		runSweep(CLI.Sweep.DryRun, CLI.Sweep.Interactive)

	case "broadcast <admin-id> <message>":
		runBroadcast(CLI.Broadcast.AdminID, CLI.Broadcast.Message)

	default:
		panic(ctx.Command())
	}
}

// loadConfig reads the configuration file, creating it with defaults on
// first run.
func loadConfig() *config.Config {
	cfg, err := config.Load(CLI.Config)
	if err != nil {
		slog.Error("Failed to load configuration", "path", CLI.Config, "error", err)
		os.Exit(1)
	}
	return cfg
}

// newStore wires the content extraction pipeline into a feed store.
func newStore(cfg *config.Config) *store.Store {
	fetcher := pkghttp.NewClient(pkghttp.DefaultConfig())
	extractor := extract.New(cfg.ExtractContent, fetcher)
	return store.New(cfg, extractor)
}

// requireToken rejects anything that is not a well-formed subscription
// token before it reaches the filesystem.
func requireToken(id string) {
	if !token.Valid(id) {
		slog.Error("Invalid subscription token", "id", id)
		os.Exit(1)
	}
}

func runAdd(id, articleURL string) {
	requireToken(id)
	cfg := loadConfig()

	status, err := newStore(cfg).Add(context.Background(), id, articleURL)
	if err != nil {
		slog.Error("Failed to save article", "error", err)
		os.Exit(1)
	}

	switch status {
	case store.Added:
		fmt.Println("Article saved.")
	case store.Duplicate:
		fmt.Println("Article already in feed.")
	}
}

func runRemove(id, articleURL string) {
	requireToken(id)
	cfg := loadConfig()

	status, err := newStore(cfg).Remove(id, articleURL)
	if err != nil {
		slog.Error("Failed to remove article", "error", err)
		os.Exit(1)
	}

	switch status {
	case store.Removed:
		fmt.Println("Article removed.")
	case store.NotFound:
		fmt.Println("Article not found in feed.")
	}
}

func runList(id string) {
	requireToken(id)
	cfg := loadConfig()

	items, err := newStore(cfg).Read(id)
	if err != nil {
		slog.Error("Failed to read feed", "error", err)
		os.Exit(1)
	}

	if len(items) == 0 {
		fmt.Println("Feed is empty.")
		return
	}

	for i, item := range items {
		fmt.Printf("%3d  %s\n     %s\n", i+1, item.DisplayTitle(), item.URL)
	}
}

func runFeedURL(id string) {
	requireToken(id)
	cfg := loadConfig()

	fmt.Println("Feed URL:    ", feed.FeedURL(cfg, id))
	fmt.Println("Personal URL:", feed.PersonalURL(cfg, id))
}

func runToken() {
	id, err := token.New()
	if err != nil {
		slog.Error("Failed to generate token", "error", err)
		os.Exit(1)
	}
	fmt.Println(id)
}

func runStats() {
	cfg := loadConfig()

	count, err := store.New(cfg, nil).CountFeeds()
	if err != nil {
		slog.Error("Failed to count feeds", "error", err)
		os.Exit(1)
	}

	fmt.Println("Feeds:             ", count)
	fmt.Println("Max items per feed:", cfg.MaxItems)
	fmt.Println("Content extraction:", cfg.ExtractContent)
	if cfg.InstanceContact != "" {
		fmt.Println("Instance contact:  ", cfg.InstanceContact)
	}
}

func runSweep(dryRun, interactive bool) {
	cfg := loadConfig()
	sweeper := maintenance.NewSweeper(cfg)

	candidates, err := sweeper.Scan()
	if err != nil {
		slog.Error("Failed to scan feed directory", "error", err)
		os.Exit(1)
	}

	if len(candidates) == 0 {
		fmt.Println("Nothing to sweep.")
		return
	}

	if dryRun {
		for _, c := range candidates {
			fmt.Printf("%s  %s (%d items, idle %s)\n", c.Reason, c.OwnerID, c.ItemCount, c.Age.Truncate(time.Second))
		}
		return
	}

	if interactive {
		confirmed, err := maintenance.RunInteractive(candidates)
		if err != nil {
			slog.Error("Interactive sweep failed", "error", err)
			os.Exit(1)
		}
		if !confirmed {
			fmt.Println("Sweep cancelled.")
			return
		}
	}

	deleted, err := sweeper.Apply(candidates)
	if err != nil {
		slog.Error("Failed to delete feeds", "error", err)
		os.Exit(1)
	}
	fmt.Printf("Deleted %d of %d candidate feeds.\n", deleted, len(candidates))
}

func runBroadcast(adminID, message string) {
	cfg := loadConfig()

	if cfg.AdminID == "" || adminID != cfg.AdminID {
		slog.Error("Broadcast requires the instance admin token")
		os.Exit(1)
	}

	updated, err := broadcast.New(cfg, store.New(cfg, nil)).Send(message)
	if err != nil {
		slog.Error("Broadcast failed", "error", err)
		os.Exit(1)
	}
	fmt.Printf("Notice delivered to %d feeds.\n", updated)
}
