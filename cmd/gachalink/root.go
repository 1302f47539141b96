package main

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/cdtdelta/gachalink/internal/bootstrap"
	"github.com/cdtdelta/gachalink/internal/model"
	"github.com/spf13/cobra"
)

// buildEnv assembles the runtime environment; tests replace it.
type buildEnv func(opts bootstrap.Options) (*bootstrap.Env, error)

func newRootCmd(build buildEnv) *cobra.Command {
	if build == nil {
		build = bootstrap.Build
	}

	var cfgFile string

	rootCmd := &cobra.Command{
		Use:   "gachalink",
		Short: "Find the Wuthering Waves Convene History link in local game logs",
		Long: `gachalink looks for the game installation using the shell MUI cache,
firewall rules, the uninstall registry and common install folders, then
reads the client logs for the newest Convene History link.

Links older than 30 minutes are reported as expired but still printed.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is <user config dir>/gachalink/config.yaml)")

	open := func() (*bootstrap.Env, error) {
		return build(bootstrap.Options{ConfigPath: cfgFile})
	}

	rootCmd.AddCommand(newScanCmd(open))
	rootCmd.AddCommand(newHistoryCmd(open))

	return rootCmd
}

// scanOutput is the --json form of a verdict.
type scanOutput struct {
	Status     string     `json:"status"`
	URL        string     `json:"url,omitempty"`
	Timestamp  *time.Time `json:"timestamp,omitempty"`
	SourcePath string     `json:"sourcePath,omitempty"`
}

func newScanCmd(open func() (*bootstrap.Env, error)) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Scan for the newest link and print it",
		Long: `Scan prints progress messages to stderr and the link to stdout.
Nothing is printed to stdout when no link was found.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := open()
			if err != nil {
				return err
			}
			defer env.Close()

			stderr := cmd.ErrOrStderr()
			verdict := env.Scanner.Run(func(msg string) {
				fmt.Fprintln(stderr, styleProgress(msg))
			})
			env.Record(verdict)

			return writeVerdict(cmd.OutOrStdout(), verdict, asJSON)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the result as JSON")
	return cmd
}

func writeVerdict(w io.Writer, v model.Verdict, asJSON bool) error {
	if asJSON {
		out := scanOutput{Status: v.Status.String()}
		if v.Found() {
			out.URL = v.URL
			ts := v.Timestamp
			out.Timestamp = &ts
			out.SourcePath = v.SourcePath
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	if v.Found() {
		_, err := fmt.Fprintln(w, v.URL)
		return err
	}
	return nil
}

func newHistoryCmd(open func() (*bootstrap.Env, error)) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List previously found links, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := open()
			if err != nil {
				return err
			}
			defer env.Close()

			if env.History == nil {
				return fmt.Errorf("scan history is disabled")
			}

			entries, err := env.History.Recent(limit)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, e := range entries {
				fmt.Fprintf(out, "%s  %s  %s\n", e.ScannedAt.Format("2006-01-02 15:04"), styleState(e.Expired), e.URL)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum number of entries")
	return cmd
}
