package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"ArticleArchiver/internal/app"
	"ArticleArchiver/internal/config"
	"ArticleArchiver/internal/logging"
	"ArticleArchiver/pkg/logger"
)

type rootOptions struct {
	dest        string
	format      string
	configPath  string
	logLevel    string
	interactive bool
	color       bool
}

func newRootCmd(in io.Reader, out, errOut io.Writer) *cobra.Command {
	var opts rootOptions

	cmd := &cobra.Command{
		Use:   "articlearchiver [URL]",
		Short: "Archive a WeChat public-account article to a dated folder",
		Long: `articlearchiver fetches one mp.weixin.qq.com article, extracts its date,
title, text and images, and writes {root}/{YYYYMMDD}_{title}/ containing a
formatted document and an images/ folder.

Without a URL it prompts for one article at a time; an empty URL exits.

Example usage:
  articlearchiver https://mp.weixin.qq.com/s/abc
  articlearchiver --dest ~/archive --format epub https://mp.weixin.qq.com/s/abc
  articlearchiver --interactive`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			console := logger.New(out, opts.color)

			cfg, err := loadConfig(cmd, opts)
			if err != nil {
				console.Error(err)
				return err
			}

			if opts.interactive || len(args) == 0 {
				return runInteractive(cmd.Context(), cfg, in, out, console)
			}
			return runOnce(cmd.Context(), cfg, args[0], opts.dest, errOut, console)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.dest, "dest", "d", "", "destination root (default archive.root)")
	flags.StringVarP(&opts.format, "format", "f", "", "document format: docx, epub or pdf")
	flags.StringVar(&opts.configPath, "config", "", "config file (default $ARTICLE_ARCHIVER_CONFIG)")
	flags.StringVar(&opts.logLevel, "log-level", "", "debug, info, warn or error")
	flags.BoolVarP(&opts.interactive, "interactive", "i", false, "prompt for article URLs")
	flags.BoolVar(&opts.color, "color", true, "colored console output")

	cmd.SetIn(in)
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	return cmd
}

func loadConfig(cmd *cobra.Command, opts rootOptions) (config.Config, error) {
	cfg := config.Load()
	if opts.configPath != "" {
		var err error
		if cfg, err = config.LoadFile(opts.configPath); err != nil {
			return config.Config{}, fmt.Errorf("loading config: %w", err)
		}
	}

	if cmd.Flags().Changed("log-level") {
		cfg.Logging.Level = opts.logLevel
	}
	if cmd.Flags().Changed("format") {
		cfg.Document.Format = strings.ToLower(opts.format)
	}
	if opts.dest != "" {
		cfg.Archive.Root = opts.dest
	}
	return cfg, nil
}

func runOnce(ctx context.Context, cfg config.Config, url, dest string, errOut io.Writer, console *logger.Console) error {
	log := logging.NewWithSinks(errOut, cfg.Logging.Level)
	application, err := app.New(cfg, log)
	if err != nil {
		console.Error(err)
		return err
	}

	summary, err := application.Run(ctx, url, dest)
	if err != nil {
		console.Error(err)
		return err
	}
	console.Summary(summary)
	return nil
}

// runInteractive reads URL and destination pairs until an empty URL, EOF or
// an interrupt. Log output goes through the console only.
func runInteractive(ctx context.Context, cfg config.Config, in io.Reader, out io.Writer, console *logger.Console) error {
	console.Keys = []string{"url", "title", "date", "folder", "index", "error"}
	log := logging.NewWithSinks(nil, cfg.Logging.Level, console)
	application, err := app.New(cfg, log)
	if err != nil {
		console.Error(err)
		return err
	}

	done := make(chan struct{})
	defer close(done)
	input := readLines(in, done)

	var closed bool
	prompt := func(label string) (string, bool) {
		fmt.Fprintf(out, "%s: ", label)
		select {
		case line, ok := <-input.lines:
			closed = !ok
			return strings.TrimSpace(line), ok
		case <-ctx.Done():
			fmt.Fprintln(out)
			return "", false
		}
	}

	var failures int
	for {
		url, ok := prompt("article URL (blank to quit)")
		if !ok || url == "" {
			break
		}
		dest, _ := prompt("destination root (blank = " + cfg.Archive.Root + ")")

		job := application.Start(ctx, url, dest)
		select {
		case <-job.Done():
		case <-ctx.Done():
			log.Warn("interrupt received, stopping after the current stage")
			job.Cancel()
		}

		summary, err := job.Wait()
		if err != nil {
			failures++
			console.Error(err)
			if ctx.Err() != nil {
				return err
			}
			continue
		}
		console.Summary(summary)
	}

	if closed && input.err != nil {
		return fmt.Errorf("reading input: %w", input.err)
	}
	if failures > 0 {
		return fmt.Errorf("%d article(s) failed", failures)
	}
	return nil
}

// lineSource delivers input lines; err is set before lines is closed.
type lineSource struct {
	lines <-chan string
	err   error
}

// readLines scans in on its own goroutine so prompts can be abandoned on
// interrupt. Closing done releases the goroutine once its current read returns.
func readLines(in io.Reader, done <-chan struct{}) *lineSource {
	lines := make(chan string)
	src := &lineSource{lines: lines}
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-done:
				return
			}
		}
		src.err = scanner.Err()
	}()
	return src
}
