// Package cmd provides the searchctl commands.
package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/Adithya-Monish-Kumar-K/embedded-search/internal/corpus"
	"github.com/Adithya-Monish-Kumar-K/embedded-search/internal/execution"
	"github.com/Adithya-Monish-Kumar-K/embedded-search/internal/searcher"
	"github.com/Adithya-Monish-Kumar-K/embedded-search/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/embedded-search/pkg/logger"
)

// globalOptions are the persistent flags shared by every subcommand.
type globalOptions struct {
	configPath string
	corpusPath string
	stopWords  []string
	mode       string
	format     string
	logLevel   string
}

func NewRootCmd() *cobra.Command {
	var opts globalOptions

	cmd := &cobra.Command{
		Use:   "searchctl",
		Short: "Query an in-memory TF-IDF index built from a corpus file",
		Long: `searchctl loads a JSON-lines corpus into an in-memory index and runs
one operation against it.

Examples:
  searchctl search "curly cat -dog" --corpus docs.jsonl
  searchctl match 3 "curly cat" --mode parallel
  searchctl dedup --corpus docs.jsonl
  searchctl batch "cat" "dog -curly" --joined`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logger.SetupWriter(cmd.ErrOrStderr(), opts.logLevel, "text")
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "YAML config file (stop words, shards, workers, corpus path)")
	cmd.PersistentFlags().StringVar(&opts.corpusPath, "corpus", "", "JSON-lines corpus file; overrides search.corpusPath")
	cmd.PersistentFlags().StringSliceVar(&opts.stopWords, "stop-words", nil, "stop words; override search.stopWords")
	cmd.PersistentFlags().StringVarP(&opts.mode, "mode", "m", "", "execution mode: sequential or parallel")
	cmd.PersistentFlags().StringVarP(&opts.format, "format", "f", "text", "output format: text, json")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "log level: debug, info, warn, error")

	cmd.AddCommand(newSearchCmd(&opts))
	cmd.AddCommand(newMatchCmd(&opts))
	cmd.AddCommand(newDedupCmd(&opts))
	cmd.AddCommand(newBatchCmd(&opts))
	return cmd
}

func Execute() error {
	return NewRootCmd().ExecuteContext(context.Background())
}

// session is a loaded server plus the settings the subcommands need.
type session struct {
	server  *searcher.Server
	mode    execution.Mode
	workers int
}

func (o *globalOptions) open() (*session, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, err
	}
	if o.corpusPath != "" {
		cfg.Search.CorpusPath = o.corpusPath
	}
	if o.stopWords != nil {
		cfg.Search.StopWords = o.stopWords
	}
	if o.mode != "" {
		cfg.Search.DefaultMode = o.mode
	}
	mode, err := execution.ParseMode(cfg.Search.DefaultMode)
	if err != nil {
		return nil, err
	}
	if cfg.Search.CorpusPath == "" {
		return nil, fmt.Errorf("no corpus: pass --corpus or set search.corpusPath")
	}

	server, err := searcher.New(searcher.Options{
		StopWords:      cfg.Search.StopWords,
		Shards:         cfg.Search.Shards,
		Workers:        cfg.Search.Workers,
		QueryCacheSize: cfg.Search.QueryCacheSize,
	})
	if err != nil {
		return nil, err
	}
	if _, err := corpus.LoadFile(server, cfg.Search.CorpusPath); err != nil {
		return nil, err
	}
	return &session{server: server, mode: mode, workers: cfg.Search.Workers}, nil
}

func (o *globalOptions) writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (o *globalOptions) checkFormat() error {
	switch o.format {
	case "text", "json":
		return nil
	default:
		return fmt.Errorf("unknown output format %q", o.format)
	}
}
