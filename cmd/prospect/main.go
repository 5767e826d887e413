package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"time"

	"github.com/alecthomas/kong"
	charmlog "github.com/charmbracelet/log"
	"github.com/fwojciec/prospect"
	"github.com/fwojciec/prospect/chromedp"
	"github.com/fwojciec/prospect/crawl"
	"github.com/fwojciec/prospect/fs"
	"github.com/fwojciec/prospect/gemini"
	"github.com/fwojciec/prospect/goquery"
	prohttp "github.com/fwojciec/prospect/http"
	"github.com/fwojciec/prospect/outreach"
	"github.com/fwojciec/prospect/rod"
	pslog "github.com/fwojciec/prospect/slog"
	"github.com/fwojciec/prospect/smtp"
	"github.com/fwojciec/prospect/sqlite"
	"github.com/joho/godotenv"
	"google.golang.org/genai"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	// A missing .env file is fine; the environment may already be set.
	_ = godotenv.Load()

	m := NewMain()
	m.Stdin = os.Stdin

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// Database path for stored crawls. Set before calling Run().
	DBPath string

	// Outreach log path. Set before calling Run().
	LogPath string

	// Stdin is read for send confirmations.
	Stdin io.Reader

	// SQLite database used by SQLite service implementations.
	DB *sqlite.DB

	mu      sync.Mutex
	closers []io.Closer
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{
		DBPath:  defaultDBPath(),
		LogPath: defaultLogPath(),
	}
}

// Close gracefully stops the program.
func (m *Main) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var firstErr error
	for i := len(m.closers) - 1; i >= 0; i-- {
		if err := m.closers[i].Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	m.closers = nil
	if m.DB != nil {
		if err := m.DB.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		m.DB = nil
	}
	return firstErr
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	deps := &Dependencies{
		Ctx:    ctx,
		Stdin:  m.Stdin,
		Stdout: stdout,
		Stderr: stderr,
		Now:    time.Now,
	}
	if deps.Stdin == nil {
		deps.Stdin = os.Stdin
	}

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("prospect"),
		kong.Description("Research a company website and draft personalized outreach."),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}), // Don't exit on help
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'prospect --help' to see available commands")
	}

	cmd := args[0]
	if cmd == "help" || cmd == "--help" || cmd == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}
	command := kongCtx.Selected().Name

	deps.Logger = newLogger(stderr, cli.Verbose)

	m.DB = sqlite.NewDB(m.DBPath)
	if err := m.DB.Open(); err != nil {
		fmt.Fprintf(stderr, "Hint: Set PROSPECT_DB to use a different database path\n")
		return fmt.Errorf("failed to open database at %q: %w", m.DBPath, err)
	}
	defer m.Close()

	deps.Corpora = sqlite.NewCorpusService(m.DB)
	deps.Outreach = fs.NewOutreachLog(m.LogPath)
	deps.Exporter = fs.NewCorpusExporter()

	cfg := prospect.DefaultConfig()
	cfg.MaxPages = cli.MaxPages
	cfg.RateLimitDelay = cli.Delay
	cfg.RespectRobots = cli.RespectRobots
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(stderr, "error: %s\n", prospect.ErrorMessage(err))
		return err
	}

	if command == "scrape" || command == "run" || command == "batch" {
		deps.NewCrawler = m.crawlerFactory(cfg, cli, deps.Logger)
	}

	if command == "run" || command == "batch" {
		agent, err := m.newAgent(ctx, cli, deps, stderr)
		if err != nil {
			return err
		}
		deps.Agent = agent
	}

	return kongCtx.Run(deps)
}

// crawlerFactory wires the crawl collaborators. The renderer and the
// extractors are shared; each crawler gets its own HTTP session.
func (m *Main) crawlerFactory(cfg prospect.Config, cli *CLI, logger *slog.Logger) func() prospect.SiteCrawler {
	normalizer := goquery.NewNormalizer(cfg)
	metadata := goquery.NewMetadataExtractor()
	links := goquery.NewLinkDiscoverer(cfg)

	var renderer prospect.Renderer
	switch cli.Renderer {
	case "rod":
		r := rod.NewRenderer()
		m.addCloser(r)
		renderer = r
	case "chromedp":
		r := chromedp.NewRenderer(chromedp.WithUserAgent(cfg.UserAgent))
		m.addCloser(r)
		renderer = r
	default:
		renderer = prospect.NopRenderer{}
	}
	if cli.Verbose {
		renderer = pslog.NewLoggingRenderer(renderer, logger)
	}

	var robots prospect.RobotsPolicy = prospect.AllowAll{}
	if cfg.RespectRobots {
		robots = prohttp.NewRobotsPolicy(cfg.UserAgent, logger)
	}

	return func() prospect.SiteCrawler {
		var fetcher prospect.Fetcher = prohttp.NewFetcherFromConfig(cfg)
		m.addCloser(fetcher)
		if cli.Verbose {
			fetcher = pslog.NewLoggingFetcher(fetcher, logger)
		}
		return &crawl.Crawler{
			Fetcher:    fetcher,
			Renderer:   renderer,
			Normalizer: normalizer,
			Metadata:   metadata,
			Links:      links,
			Limiter:    crawl.NewLimiter(cfg.RateLimitDelay),
			Robots:     robots,
			Config:     cfg,
			Logger:     logger,
		}
	}
}

func (m *Main) addCloser(c io.Closer) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closers = append(m.closers, c)
}

// newAgent wires the LLM and SMTP collaborators of the pipeline.
func (m *Main) newAgent(ctx context.Context, cli *CLI, deps *Dependencies, stderr io.Writer) (*outreach.Agent, error) {
	if cli.GeminiAPIKey == "" {
		fmt.Fprintln(stderr, "GEMINI_API_KEY environment variable not set. Get an API key at https://aistudio.google.com/apikey")
		return nil, fmt.Errorf("GEMINI_API_KEY not set. Get a key at https://aistudio.google.com/apikey")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cli.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		fmt.Fprintln(stderr, "Hint: Check your GEMINI_API_KEY is valid")
		return nil, fmt.Errorf("failed to connect to Gemini API: %w", err)
	}

	opts := []gemini.Option{gemini.WithModel(cli.Model), gemini.WithLogger(deps.Logger)}
	var analyzer prospect.Analyzer = gemini.NewAnalyzer(client.Models, opts...)
	var drafter prospect.Drafter = gemini.NewDrafter(client.Models, opts...)
	var sender prospect.Sender = smtp.NewSender(cli.SMTPUsername, cli.SMTPPassword,
		smtp.WithAddr(cli.SMTPHost, cli.SMTPPort),
		smtp.WithFromName(cli.SenderName),
		smtp.WithLogger(deps.Logger),
	)
	if cli.Verbose {
		analyzer = pslog.NewLoggingAnalyzer(analyzer, deps.Logger)
		drafter = pslog.NewLoggingDrafter(drafter, deps.Logger)
	}
	sender = pslog.NewLoggingSender(sender, deps.Logger)

	return &outreach.Agent{
		NewCrawler: deps.NewCrawler,
		Analyzer:   analyzer,
		Drafter:    drafter,
		Sender:     sender,
		Outreach:   deps.Outreach,
		Corpora:    deps.Corpora,
		SenderName: cli.SenderName,
		Logger:     deps.Logger,
		Now:        deps.Now,
	}, nil
}

// newLogger returns a slog logger backed by a charmbracelet handler.
// Only warnings are shown unless verbose is set.
func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := charmlog.WarnLevel
	if verbose {
		level = charmlog.DebugLevel
	}
	handler := charmlog.NewWithOptions(w, charmlog.Options{
		Level:           level,
		ReportTimestamp: verbose,
		TimeFormat:      time.TimeOnly,
		Prefix:          "prospect",
	})
	return slog.New(handler)
}

func defaultDBPath() string {
	if path := os.Getenv("PROSPECT_DB"); path != "" {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "prospect.db"
	}
	dir := filepath.Join(home, ".prospect")
	_ = os.MkdirAll(dir, 0755)
	return filepath.Join(dir, "prospect.db")
}

func defaultLogPath() string {
	if path := os.Getenv("PROSPECT_LOG"); path != "" {
		return path
	}
	return fs.DefaultOutreachLogPath
}
