package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/clipsave"
	"github.com/fwojciec/clipsave/asset"
	"github.com/fwojciec/clipsave/download"
	"github.com/fwojciec/clipsave/fs"
	"github.com/fwojciec/clipsave/htmltomarkdown"
	cshttp "github.com/fwojciec/clipsave/http"
	"github.com/fwojciec/clipsave/relay"
	csslog "github.com/fwojciec/clipsave/slog"
	"github.com/fwojciec/clipsave/sqlite"
	"github.com/fwojciec/clipsave/strategy"
	"github.com/fwojciec/clipsave/webdav"
)

func main() {
	ctx := context.Background()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// Default paths. Set before calling Run().
	DBPath      string
	DownloadDir string

	// SQLite database holding the save history.
	DB *sqlite.DB
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{
		DBPath:      defaultDBPath(),
		DownloadDir: defaultDownloadDir(),
	}
}

// Close gracefully stops the program.
func (m *Main) Close() error {
	if m.DB != nil {
		return m.DB.Close()
	}
	return nil
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	deps := &Dependencies{
		Ctx:    ctx,
		Stdout: stdout,
		Stderr: stderr,
	}

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("clipsave"),
		kong.Description("Save web clippings as Markdown together with their images."),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}), // Don't exit on help
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'clipsave --help' to see available commands")
	}
	if args[0] == "help" || args[0] == "--help" || args[0] == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}
	cmd := strings.Fields(kongCtx.Command())[0]

	cfg, err := LoadConfig(cli.Config)
	if err != nil {
		return err
	}
	deps.Config = cfg
	deps.Logger = newLogger(stderr, cli.Verbose)

	if cmd == "save" || cmd == "history" {
		dbPath := firstNonEmpty(cli.DB, cfg.DB, m.DBPath)
		m.DB = sqlite.NewDB(dbPath)
		if err := m.DB.Open(); err != nil {
			fmt.Fprintf(stderr, "Hint: Set CLIPSAVE_DB to use a different database path\n")
			return fmt.Errorf("failed to open database at %q: %w", dbPath, err)
		}
		defer m.Close()
		deps.History = sqlite.NewHistoryService(m.DB)
	}

	switch cmd {
	case "save":
		deps.Extractor = newExtractor(cli.Save.Extract)
	case "preview":
		deps.Extractor = newExtractor(cli.Preview.Extract)
	}
	deps.Converter = htmltomarkdown.NewConverter()
	assets := asset.NewService(csslog.NewLoggingAssetFetcher(cshttp.NewAssetFetcher(), deps.Logger))
	deps.Assets = assets

	if cmd == "save" {
		if cli.Save.Concurrency > 0 {
			assets.Concurrency = cli.Save.Concurrency
		}
		if rps := firstPositive(cli.Save.RateLimit, cfg.RateLimit); rps > 0 {
			assets.Limiter = asset.NewDomainLimiter(rps, asset.DefaultBurst)
		}

		downloader := fs.NewDownloader(firstNonEmpty(cli.Save.DownloadDir, cfg.DownloadDir, m.DownloadDir))
		defer downloader.Close()

		dispatcher, closeRelay, err := wireStrategies(ctx, assets, downloader, deps.Logger, progressPrinter(stderr))
		if err != nil {
			return err
		}
		defer closeRelay()
		deps.Dispatcher = dispatcher
	}

	return kongCtx.Run(deps)
}

// wireStrategies builds the strategy registry. Privileged strategies run
// behind a relay in their own goroutine, the way they would in a host
// that separates page context from download rights.
func wireStrategies(ctx context.Context, assets clipsave.AssetService, downloader clipsave.Downloader, logger *slog.Logger, progress clipsave.FetchProgressFunc) (*strategy.Dispatcher, func(), error) {
	tracker := csslog.NewLoggingDownloadTracker(download.NewTracker(downloader), logger)

	local := strategy.NewLocalStrategy(tracker, assets)
	local.Progress = progress

	remote := strategy.NewRemoteStrategy(func(cfg clipsave.WebDAVConfig) (clipsave.ObjectStore, error) {
		c, err := webdav.NewClient(cfg)
		if err != nil {
			return nil, err
		}
		return csslog.NewLoggingObjectStore(c, logger), nil
	}, assets)
	remote.Progress = progress

	privileged := strategy.NewDispatcher()
	front := strategy.NewDispatcher()
	for _, s := range []clipsave.Strategy{local, remote} {
		s = csslog.NewLoggingStrategy(s, logger)
		if err := privileged.Register(s); err != nil {
			return nil, nil, err
		}
		if err := front.Register(s); err != nil {
			return nil, nil, err
		}
	}

	server := relay.NewServer(privileged)
	if err := server.Open(); err != nil {
		return nil, nil, err
	}
	client := relay.NewClient(server)
	if _, err := client.Send(ctx, &clipsave.PingRequest{}); err != nil {
		_ = server.Close()
		return nil, nil, fmt.Errorf("privileged context not responding: %w", err)
	}
	front.Relay = client

	return front, func() { _ = server.Close() }, nil
}

// progressPrinter reports asset fetch progress on w.
func progressPrinter(w io.Writer) clipsave.FetchProgressFunc {
	return func(p clipsave.FetchProgress) {
		if p.Error != nil {
			fmt.Fprintf(w, "[%d/%d] %s: %s\n", p.Completed, p.Total, p.URL, clipsave.ErrorMessage(p.Error))
			return
		}
		fmt.Fprintf(w, "[%d/%d] %s\n", p.Completed, p.Total, p.URL)
	}
}

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "clipsave.db"
	}
	dir := filepath.Join(home, ".clipsave")
	_ = os.MkdirAll(dir, 0755)
	return filepath.Join(dir, "history.db")
}

func defaultDownloadDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, "Downloads")
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func firstPositive(values ...float64) float64 {
	for _, v := range values {
		if v > 0 {
			return v
		}
	}
	return 0
}
