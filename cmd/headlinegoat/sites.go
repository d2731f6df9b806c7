package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/IshaanNene/HeadlineGoat/internal/fetcher"
	"github.com/IshaanNene/HeadlineGoat/internal/monitor"
	"github.com/IshaanNene/HeadlineGoat/internal/parser"
)

// sitesCmd lists the registered sites.
func sitesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sites",
		Short: "List registered news sites",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			registry, err := parser.NewRegistry(&cfg.Parser, setupLogger(&cfg.Logging))
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%-22s %-8s %s\n", "SITE", "KIND", "URL")
			for _, s := range registry.Sites() {
				fmt.Fprintf(out, "%-22s %-8s %s\n", s.Name, s.Kind, s.URL)
			}
			return nil
		},
	}
}

var signatureInterval time.Duration

// signatureCmd fetches a page twice and compares structure fingerprints.
func signatureCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "signature [site or url]",
		Short: "Check whether a page's markup structure is stable",
		Long: `Fetch the page twice and compare the structure signature of both copies.
A changed signature means the tag/attribute layout moved and site selectors
may need updating.`,
		Args: cobra.ExactArgs(1),
		RunE: runSignature,
	}
	cmd.Flags().DurationVar(&signatureInterval, "interval", 2*time.Second, "wait between the two fetches")
	return cmd
}

func runSignature(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := setupLogger(&cfg.Logging)

	registry, err := parser.NewRegistry(&cfg.Parser, logger)
	if err != nil {
		return err
	}
	target, err := registry.Lookup(args[0])
	if err != nil {
		return err
	}

	base, err := fetcher.New(cfg, logger)
	if err != nil {
		return fmt.Errorf("create fetcher: %w", err)
	}
	f := fetcher.NewRetrier(base, &cfg.Fetcher, logger)
	defer f.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	var sigs [2]string
	for i := range sigs {
		if i > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(signatureInterval):
			}
		}
		out := f.Fetch(ctx, target.URL)
		if !out.Ok() {
			return fmt.Errorf("fetch %s: %s", target.URL, out.Detail())
		}
		sigs[i] = parser.Signature(out.Body)
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "%s\n  first:  %s\n  second: %s\n", target, sigs[0], sigs[1])
	if sigs[0] == sigs[1] {
		fmt.Fprintln(w, "  structure stable")
	} else {
		fmt.Fprintln(w, "  structure changed between fetches")
	}

	detector, err := monitor.New(&cfg.Monitor, logger)
	if err != nil || detector == nil {
		return err
	}
	prev := detector.Last(target.URL)
	if _, err := detector.Detect(target, sigs[1]); err != nil {
		return err
	}
	switch {
	case prev == "":
		fmt.Fprintln(w, "  snapshot recorded")
	case prev != sigs[1]:
		fmt.Fprintf(w, "  changed since last snapshot (was %s)\n", prev)
	default:
		fmt.Fprintln(w, "  matches last snapshot")
	}
	return nil
}
