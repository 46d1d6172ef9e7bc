package main

import (
	"context"
	"io"
	"log/slog"

	"github.com/fwojciec/clipsave"
)

// Dispatcher runs a save with a named strategy.
type Dispatcher interface {
	Dispatch(ctx context.Context, sc *clipsave.SaveContext, name string) *clipsave.SaveResult
}

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx        context.Context
	Stdout     io.Writer
	Stderr     io.Writer
	Logger     *slog.Logger
	Config     *FileConfig
	Assets     clipsave.AssetService
	Extractor  clipsave.Extractor
	Converter  clipsave.Converter
	Dispatcher Dispatcher
	History    clipsave.HistoryService
}

func (d *Dependencies) logger() *slog.Logger {
	if d.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return d.Logger
}

func (d *Dependencies) config() *FileConfig {
	if d.Config == nil {
		return &FileConfig{}
	}
	return d.Config
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Config  string `short:"C" env:"CLIPSAVE_CONFIG" help:"YAML config file; its values fill unset flags"`
	DB      string `env:"CLIPSAVE_DB" help:"History database path"`
	Verbose bool   `short:"v" env:"CLIPSAVE_VERBOSE" help:"Log every fetch, upload and download"`

	Save    SaveCmd    `cmd:"" help:"Save a Markdown or HTML file with its images"`
	Preview PreviewCmd `cmd:"" help:"Show the rewritten content and planned asset paths without fetching"`
	History HistoryCmd `cmd:"" help:"List previous saves"`
}

// SaveCmd is the "save" subcommand.
type SaveCmd struct {
	File      string `arg:"" help:"Markdown file, or .html file to convert"`
	Name      string `short:"n" help:"Destination name without extension, e.g. notes/2024/article (default: file name)"`
	Strategy  string `short:"s" env:"CLIPSAVE_STRATEGY" help:"Save strategy: local or webdav (default: local)"`
	Title     string `help:"Title recorded in the history"`
	SourceURL string `name:"url" help:"Page URL; relative links in HTML input resolve against it"`
	Extract   string `enum:"none,selector,readability,trafilatura" default:"none" env:"CLIPSAVE_EXTRACT" help:"Isolate the article of HTML input first (none, selector, readability, trafilatura)"`
	AssetsDir string `env:"CLIPSAVE_ASSETS_DIR" help:"Directory name for images next to the document (default: assets)"`

	DownloadDir string `env:"CLIPSAVE_DOWNLOAD_DIR" help:"Directory the local strategy writes into"`
	BasePath    string `env:"CLIPSAVE_BASE_PATH" help:"Folder inside the download directory"`

	WebDAVURL      string `name:"webdav-url" env:"CLIPSAVE_WEBDAV_URL" help:"WebDAV server URL"`
	WebDAVUser     string `name:"webdav-user" env:"CLIPSAVE_WEBDAV_USER" help:"WebDAV username"`
	WebDAVPassword string `name:"webdav-password" env:"CLIPSAVE_WEBDAV_PASSWORD" help:"WebDAV password"`
	WebDAVAuth     string `name:"webdav-auth" env:"CLIPSAVE_WEBDAV_AUTH" help:"WebDAV auth scheme: basic or digest"`
	WebDAVBasePath string `name:"webdav-base-path" env:"CLIPSAVE_WEBDAV_BASE_PATH" help:"Folder on the WebDAV server"`

	Concurrency int     `short:"c" default:"6" help:"Concurrent image fetch limit"`
	RateLimit   float64 `env:"CLIPSAVE_RATE_LIMIT" help:"Image requests per second per host (default: unlimited)"`
}

// PreviewCmd is the "preview" subcommand.
type PreviewCmd struct {
	File      string `arg:"" help:"Markdown file, or .html file to convert"`
	Name      string `short:"n" help:"Destination name without extension (default: file name)"`
	SourceURL string `name:"url" help:"Page URL; relative links in HTML input resolve against it"`
	Extract   string `enum:"none,selector,readability,trafilatura" default:"none" env:"CLIPSAVE_EXTRACT" help:"Isolate the article of HTML input first (none, selector, readability, trafilatura)"`
	AssetsDir string `env:"CLIPSAVE_ASSETS_DIR" help:"Directory name for images next to the document (default: assets)"`
}

// HistoryCmd is the "history" subcommand.
type HistoryCmd struct {
	Strategy string `short:"s" help:"Only show saves made with this strategy"`
	Failed   bool   `help:"Only show failed saves"`
	Limit    int    `short:"l" default:"20" help:"Maximum number of entries"`
	Offset   int    `help:"Number of entries to skip"`
}
