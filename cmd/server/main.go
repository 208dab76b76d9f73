package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hazyhaar/jawab/pkg/api"
	"github.com/hazyhaar/jawab/pkg/chassis"
	"github.com/hazyhaar/jawab/pkg/match"
	"github.com/hazyhaar/jawab/pkg/store"
	"github.com/mark3labs/mcp-go/server"
	"gopkg.in/yaml.v3"
)

type config struct {
	Addr         string            `yaml:"addr"`
	DBPath       string            `yaml:"db_path"`
	CertFile     string            `yaml:"cert_file"`
	KeyFile      string            `yaml:"key_file"`
	Matcher      matcherConfig     `yaml:"matcher"`
	ShortAnswers map[string]string `yaml:"short_answers"`
}

type matcherConfig struct {
	MinQueryLen      int     `yaml:"min_query_len"`
	HighThreshold    float64 `yaml:"high_threshold"`
	KeywordThreshold float64 `yaml:"keyword_threshold"`
	LowThreshold     float64 `yaml:"low_threshold"`
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "serve":
		cmdServe(os.Args[2:])
	case "import":
		cmdImport(os.Args[2:])
	case "ask":
		cmdAsk(os.Args[2:])
	default:
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: jawab <command>

Commands:
  serve    Start the HTTP + MCP/QUIC server
  import   Ingest answer sheets into the record store
  ask      Ask a running server a question over MCP/QUIC
`)
}

func newLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
}

func cmdServe(args []string) {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	cfgPath := fs.String("config", "config.yaml", "path to config file")
	fs.Parse(args)

	logger := newLogger()
	cfg := loadConfig(*cfgPath, logger)

	st, err := store.Open(cfg.DBPath)
	if err != nil {
		logger.Error("failed to open record store", "path", cfg.DBPath, "error", err)
		os.Exit(1)
	}
	defer st.Close()

	ctx0, cancel0 := context.WithTimeout(context.Background(), 5*time.Second)
	n, err := st.Count(ctx0)
	cancel0()
	if err != nil {
		logger.Error("record store unreachable", "error", err)
		os.Exit(1)
	}
	logger.Info("record store ready", "path", cfg.DBPath, "records", n)

	m := match.New(st, cfg.matcherConfig(), cfg.ShortAnswers, logger.With("component", "matcher"))

	router := api.NewRouter(m, st)

	mcpSrv := server.NewMCPServer("jawab", "1.0.0")
	api.RegisterMCPTools(mcpSrv, m, st)

	ch, err := chassis.New(chassis.Config{
		Addr:      cfg.Addr,
		CertFile:  cfg.CertFile,
		KeyFile:   cfg.KeyFile,
		Handler:   router,
		MCPServer: mcpSrv,
		Logger:    logger,
	})
	if err != nil {
		logger.Error("chassis init failed", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("jawab listening", "addr", cfg.Addr)
		errCh <- ch.Start(ctx)
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutting down")
	case err := <-errCh:
		if err != nil {
			logger.Error("server error", "error", err)
		}
	}

	shutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := ch.Stop(shutCtx); err != nil {
		logger.Error("shutdown error", "error", err)
	}
}

// matcherConfig maps the YAML overrides onto the defaults; zero values keep
// the default.
func (c config) matcherConfig() match.Config {
	mc := match.DefaultConfig()
	if c.Matcher.MinQueryLen > 0 {
		mc.MinQueryLen = c.Matcher.MinQueryLen
	}
	if c.Matcher.HighThreshold > 0 {
		mc.HighThreshold = c.Matcher.HighThreshold
	}
	if c.Matcher.KeywordThreshold > 0 {
		mc.KeywordThreshold = c.Matcher.KeywordThreshold
	}
	if c.Matcher.LowThreshold > 0 {
		mc.LowThreshold = c.Matcher.LowThreshold
	}
	return mc
}

func loadConfig(path string, logger *slog.Logger) config {
	cfg := config{
		Addr:   ":8420",
		DBPath: "jawab.db",
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Info("no config file, using defaults", "path", path)
			return cfg
		}
		logger.Error("read config", "error", err)
		os.Exit(1)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		logger.Error("parse config", "error", err)
		os.Exit(1)
	}
	return cfg
}
