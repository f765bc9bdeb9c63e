// Package cli implements the jarvis command line: it loads a YAML seed
// file into a memory-resident data layer and queries it.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/dan-solli/jarvis-core/pkg/jarvis"
)

type rootOptions struct {
	configPath string
	seedPath   string
	format     string
	verbose    bool
}

// NewRootCmd builds the jarvis command tree.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "jarvis",
		Short:         "Personal assistant data layer",
		Long:          "Loads items and memories from a YAML seed file into memory and answers queries over them.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "YAML config file (default: built-in defaults)")
	cmd.PersistentFlags().StringVarP(&opts.seedPath, "seed", "s", "", "YAML seed file with items and memories (default: $JARVIS_SEED)")
	cmd.PersistentFlags().StringVarP(&opts.format, "format", "f", "text", "Output format: text or json")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Log debug output to stderr")

	cmd.AddCommand(newSearchCmd(opts))
	cmd.AddCommand(newRecallCmd(opts))
	cmd.AddCommand(newSummaryCmd(opts))
	cmd.AddCommand(newItemsCmd(opts))
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// Execute runs the root command against os.Args.
func Execute() error {
	cmd := NewRootCmd()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return err
	}
	return nil
}

// session is a loaded data layer plus the user the seed belongs to.
type session struct {
	j      *jarvis.Jarvis
	userID uuid.UUID
}

// open builds a Jarvis instance and loads the seed file into it.
func (o *rootOptions) open(ctx context.Context, stderr io.Writer) (*session, error) {
	cfg := jarvis.DefaultConfig()
	if o.configPath != "" {
		loaded, err := jarvis.LoadConfig(o.configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	logger := slog.New(slog.DiscardHandler)
	if o.verbose {
		logger = slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}

	j, err := jarvis.New(cfg, jarvis.WithLogger(logger))
	if err != nil {
		return nil, err
	}

	path := o.seedPath
	if path == "" {
		path = os.Getenv("JARVIS_SEED")
	}
	if path == "" {
		j.Close()
		return nil, fmt.Errorf("no seed file: pass --seed or set JARVIS_SEED")
	}

	seed, err := LoadSeed(path)
	if err != nil {
		j.Close()
		return nil, err
	}
	userID, err := seed.Apply(ctx, j)
	if err != nil {
		j.Close()
		return nil, err
	}
	return &session{j: j, userID: userID}, nil
}

func (s *session) Close() {
	s.j.Close()
}

func (o *rootOptions) wantJSON() bool {
	return o.format == "json"
}

func writeJSON(w io.Writer, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}
