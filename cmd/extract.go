package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"github.com/capykyo/capy-book-fetch/internal/api"
	"github.com/capykyo/capy-book-fetch/internal/bootstrap"
	"github.com/capykyo/capy-book-fetch/internal/extractor"
	"github.com/capykyo/capy-book-fetch/internal/fetcher"
	"github.com/capykyo/capy-book-fetch/internal/logger"
)

const contentPreviewRunes = 400

func newExtractCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "extract <url>",
		Short: "Fetch a page and print the extracted content",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			log := logger.NewNop()
			if cfg.Service.Debug {
				if log, err = bootstrap.CreateLogger(cfg); err != nil {
					return err
				}
			}
			f := bootstrap.NewFetcher(cfg, log, nil)
			return runExtract(cmd.Context(), cmd.OutOrStdout(), f, strings.TrimSpace(args[0]), asJSON)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the result as JSON")
	return cmd
}

func runExtract(ctx context.Context, out io.Writer, f api.Fetcher, rawURL string, asJSON bool) error {
	if _, err := fetcher.ValidateURL(rawURL); err != nil {
		return err
	}

	ruleset := extractor.DefaultDispatcher().Select(rawURL)

	html, err := f.Fetch(ctx, rawURL)
	if err != nil {
		return err
	}

	result, err := extractor.NewEngine().Extract(html, rawURL, ruleset)
	if err != nil {
		return fmt.Errorf("extract: %w", err)
	}

	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		return enc.Encode(result)
	}

	renderResult(out, ruleset, result)
	return nil
}

func renderResult(out io.Writer, ruleset extractor.RulesetID, r *extractor.Result) {
	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.SetStyle(table.StyleLight)
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, WidthMax: 80, WidthMaxEnforcer: text.WrapSoft},
	})

	t.AppendHeader(table.Row{"Field", "Value"})
	t.AppendRow(table.Row{"Ruleset", string(ruleset)})
	t.AppendRow(table.Row{"Title", r.Title})
	t.AppendRow(table.Row{"Author", r.Author})
	if r.BookName != "" {
		t.AppendRow(table.Row{"Book", r.BookName})
	}
	if r.Description != "" {
		t.AppendRow(table.Row{"Description", r.Description})
	}
	t.AppendRow(table.Row{"Previous", linkOrNone(r.PrevLink)})
	t.AppendRow(table.Row{"Next", linkOrNone(r.NextLink)})
	t.AppendSeparator()
	t.AppendRow(table.Row{"Content", preview(r.Content)})
	t.Render()
}

func linkOrNone(link *string) string {
	if link == nil {
		return "-"
	}
	return *link
}

func preview(content string) string {
	runes := []rune(content)
	if len(runes) <= contentPreviewRunes {
		return content
	}
	return string(runes[:contentPreviewRunes]) + "..."
}
