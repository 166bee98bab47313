package main

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/zombor/billed/internal/billing"
	"github.com/zombor/billed/internal/scanning"
	"github.com/zombor/billed/internal/session"
	"github.com/zombor/billed/internal/store"
)

//go:embed VERSION.txt
var versionFile string

var version = strings.TrimSpace(versionFile)

// rootFlags are shared by every subcommand
type rootFlags struct {
	apiURL    *string
	dbPath    *string
	logLevel  *string
	logFormat *string
	timeout   *time.Duration

	scannerType *string
	geminiKey   *string
	geminiModel *string
	ollamaURL   *string
	ollamaModel *string
	openaiKey   *string
	openaiModel *string
	openaiURL   *string
}

// app holds what the subcommands share once flags are parsed
type app struct {
	flags    rootFlags
	term     *terminal
	session  *session.BoltStore
	store    store.Store
	scanner  scanning.Scanner
	registry *prometheus.Registry
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := &app{term: &terminal{out: os.Stdout, err: os.Stderr}}
	root := a.command()

	err := root.Parse(os.Args[1:],
		ff.WithEnvVarPrefix("BILLED"),
		ff.WithConfigFileFlag("config"),
		ff.WithConfigFileParser(parseTOML),
		ff.WithConfigAllowMissingFile(),
	)
	switch {
	case errors.Is(err, ff.ErrHelp):
		fmt.Fprintf(os.Stderr, "%s\n", ffhelp.Command(root.GetSelected()))
		os.Exit(0)
	case err != nil:
		fmt.Fprintf(os.Stderr, "%s\n", ffhelp.Command(root.GetSelected()))
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	setupLogging(*a.flags.logLevel, *a.flags.logFormat)

	if err := root.Run(ctx); err != nil {
		if errors.Is(err, ff.ErrHelp) {
			fmt.Fprintf(os.Stderr, "%s\n", ffhelp.Command(root.GetSelected()))
			os.Exit(0)
		}
		slog.Error("Command failed", "error", err)
		a.close()
		os.Exit(1)
	}
	a.close()
}

func setupLogging(level, format string) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: lvl}

	var handler slog.Handler = slog.NewTextHandler(os.Stderr, opts)
	if format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))
}

// command builds the ff command tree
func (a *app) command() *ff.Command {
	fs := ff.NewFlagSet("billed")
	a.flags = rootFlags{
		apiURL:    fs.StringLong("api-url", "", "Persistence API base URL (empty disables remote calls)"),
		dbPath:    fs.StringLong("db", "billed.db", "Local session database file path"),
		logLevel:  fs.StringLong("log-level", "info", "Log level: debug, info, warn or error"),
		logFormat: fs.StringLong("log-format", "text", "Log format: text or json"),
		timeout:   fs.DurationLong("timeout", 30*time.Second, "Timeout for each command"),

		scannerType: fs.StringLong("scanner", "none", "Receipt reader: none, gemini, ollama or openai"),
		geminiKey:   fs.StringLong("gemini-key", "", "Google Gemini API key (or set GEMINI_API_KEY env var)"),
		geminiModel: fs.StringLong("gemini-model", "gemini-2.5-flash", "Google Gemini model name"),
		ollamaURL:   fs.StringLong("ollama-url", "http://localhost:11434", "Ollama API base URL"),
		ollamaModel: fs.StringLong("ollama-model", "llava", "Ollama model name"),
		openaiKey:   fs.StringLong("openai-key", "", "OpenAI API key (or set OPENAI_API_KEY env var)"),
		openaiModel: fs.StringLong("openai-model", "gpt-4o-mini", "OpenAI model name"),
		openaiURL:   fs.StringLong("openai-url", "", "OpenAI compatible API base URL (optional)"),
	}
	fs.StringLong("config", "", "TOML config file (optional)")
	showVersion := fs.BoolLong("version", "Show version information")

	return &ff.Command{
		Name:      "billed",
		Usage:     "billed [FLAGS] <SUBCOMMAND>",
		ShortHelp: "employee expense bills and their review",
		Flags:     fs,
		Exec: func(ctx context.Context, args []string) error {
			if *showVersion {
				fmt.Fprintln(a.term.out, version)
				return nil
			}
			return ff.ErrHelp
		},
		Subcommands: []*ff.Command{
			a.sessionCommand(fs),
			a.billsCommand(fs),
			a.newBillCommand(fs),
			a.attachCommand(fs),
			a.submitCommand(fs),
			a.dashboardCommand(fs),
			a.decideCommand(fs, "accept", (*billing.AdminReviewView).Accept),
			a.decideCommand(fs, "refuse", (*billing.AdminReviewView).Refuse),
			a.serveCommand(fs),
		},
	}
}

// open prepares the local session store, the persistence API client and
// the optional scanner
func (a *app) open(ctx context.Context) error {
	if a.session != nil {
		return nil
	}

	sess, err := session.NewBoltStore(*a.flags.dbPath)
	if err != nil {
		return err
	}
	a.session = sess

	a.registry = prometheus.NewRegistry()
	a.registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	if *a.flags.apiURL != "" {
		token, err := sess.Token()
		if err != nil {
			return err
		}
		remote := store.NewRemote(*a.flags.apiURL, token)
		a.store = store.Instrument(remote, store.NewMetrics(a.registry))
		slog.Debug("Persistence API configured", "url", *a.flags.apiURL)
	} else {
		slog.Warn("No persistence API configured, nothing will be fetched or saved")
	}

	a.scanner, err = a.newScanner(ctx)
	return err
}

func (a *app) newScanner(ctx context.Context) (scanning.Scanner, error) {
	switch *a.flags.scannerType {
	case "", "none":
		return nil, nil
	case "gemini":
		apiKey := *a.flags.geminiKey
		if apiKey == "" {
			apiKey = os.Getenv("GEMINI_API_KEY")
		}
		if apiKey == "" {
			return nil, errors.New("gemini API key is required: set --gemini-key or GEMINI_API_KEY")
		}
		slog.Info("Initializing Gemini scanner", "model", *a.flags.geminiModel)
		scanner, err := scanning.NewGemini(ctx, apiKey, *a.flags.geminiModel)
		if err != nil {
			return nil, fmt.Errorf("initializing gemini: %w", err)
		}
		return scanner, nil
	case "ollama":
		slog.Info("Initializing Ollama scanner", "url", *a.flags.ollamaURL, "model", *a.flags.ollamaModel)
		scanner, err := scanning.NewOllama(*a.flags.ollamaURL, *a.flags.ollamaModel)
		if err != nil {
			return nil, fmt.Errorf("initializing ollama: %w", err)
		}
		return scanner, nil
	case "openai":
		apiKey := *a.flags.openaiKey
		if apiKey == "" {
			apiKey = os.Getenv("OPENAI_API_KEY")
		}
		if apiKey == "" {
			return nil, errors.New("openai API key is required: set --openai-key or OPENAI_API_KEY")
		}
		slog.Info("Initializing OpenAI scanner", "model", *a.flags.openaiModel)
		scanner, err := scanning.NewOpenAI(apiKey, *a.flags.openaiModel, *a.flags.openaiURL)
		if err != nil {
			return nil, fmt.Errorf("initializing openai: %w", err)
		}
		return scanner, nil
	default:
		return nil, fmt.Errorf("invalid scanner type %q: want none, gemini, ollama or openai", *a.flags.scannerType)
	}
}

func (a *app) close() {
	if a.scanner != nil {
		a.scanner.Close()
	}
	if a.session != nil {
		a.session.Close()
	}
}

func (a *app) deps() billing.Deps {
	return billing.Deps{
		Store:     a.store,
		Identity:  a.session,
		Drafts:    a.session,
		Navigator: a.term,
		Notifier:  a.term,
		Scanner:   a.scanner,
	}
}

// withTimeout bounds a single command
func (a *app) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, *a.flags.timeout)
}
