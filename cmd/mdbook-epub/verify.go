package main

import (
	"fmt"
	"io"

	"github.com/Laisky/errors/v2"
	"github.com/Laisky/zap"
	"github.com/spf13/cobra"

	"github.com/simp-lee/mdbook-epub/internal/logging"
	"github.com/simp-lee/mdbook-epub/verify"
)

// errProblems is returned when a checked book has structural errors.
var errProblems = errors.New("book has structural errors")

func newVerifyCommand(opts *options, stdout, stderr io.Writer) *cobra.Command {
	var epubcheck bool
	cmd := &cobra.Command{
		Use:   "verify <file.epub>",
		Short: "Check the structure of an EPUB file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceErrors = true
			log, err := logging.New(stderr, logging.Level(opts.logLevel))
			if err != nil {
				fmt.Fprintln(stderr, err)
				return err
			}
			defer log.Sync()

			if err := verifyFile(cmd, args[0], epubcheck, stdout); err != nil {
				log.Error("verify failed", zap.String("path", args[0]), zap.Error(err))
				return err
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&epubcheck, "epubcheck", false, "also run epubcheck")
	return cmd
}

func verifyFile(cmd *cobra.Command, path string, epubcheck bool, stdout io.Writer) error {
	report, err := verify.Check(path)
	if err != nil {
		return err
	}
	if err := printReport(stdout, path, report); err != nil {
		return err
	}
	if !epubcheck {
		return nil
	}

	out, err := verify.Epubcheck(cmd.Context(), path)
	if out != "" {
		fmt.Fprintln(stdout, out)
	}
	return err
}

// printReport writes one line per problem and fails when any is an error.
func printReport(w io.Writer, path string, report *verify.Report) error {
	for _, p := range report.Problems {
		fmt.Fprintln(w, p)
	}
	if n := len(report.Errors()); n > 0 {
		return errors.Wrapf(errProblems, "%s: %d errors", path, n)
	}
	fmt.Fprintf(w, "%s: no errors, %d warnings\n", path, len(report.Warnings()))
	return nil
}
