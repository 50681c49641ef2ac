package main

import (
	"context"
	"fmt"
	"io"

	"github.com/Laisky/errors/v2"
	"github.com/Laisky/zap"
	"github.com/spf13/cobra"

	epub "github.com/simp-lee/mdbook-epub"
	"github.com/simp-lee/mdbook-epub/book"
	"github.com/simp-lee/mdbook-epub/internal/logging"
	"github.com/simp-lee/mdbook-epub/verify"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

type options struct {
	standalone bool
	logLevel   string
	check      bool
	epubcheck  bool
}

func newRootCommand(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:   "mdbook-epub [root]",
		Short: "Render an mdBook as an EPUB file",
		Long: `mdbook-epub is an mdBook backend that renders a book as an EPUB 2 or
EPUB 3 file. As a renderer it reads the render context mdbook build writes
to stdin; with --standalone it loads the book found in root itself.`,
		Version:      version,
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Failures past this point go through the logger.
			cmd.SilenceErrors = true
			log, err := logging.New(stderr, logging.Level(opts.logLevel))
			if err != nil {
				fmt.Fprintln(stderr, err)
				return err
			}
			defer log.Sync()

			root := "."
			if len(args) > 0 {
				root = args[0]
			}
			if err := run(cmd.Context(), opts, root, stdin, stdout, log); err != nil {
				log.Error("mdbook-epub failed", zap.Error(err))
				return err
			}
			return nil
		},
	}
	cmd.SetIn(stdin)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.logLevel, "log-level", "",
		"log level: debug, info, warn, error or off (default $"+logging.EnvVar+" or "+logging.DefaultLevel+")")
	cmd.Flags().BoolVarP(&opts.standalone, "standalone", "s", false, "load the book from root instead of reading stdin")
	cmd.Flags().BoolVar(&opts.check, "check", false, "check the structure of the generated book")
	cmd.Flags().BoolVar(&opts.epubcheck, "epubcheck", false, "validate the generated book with epubcheck")

	cmd.AddCommand(newVerifyCommand(opts, stdout, stderr))
	return cmd
}

func run(ctx context.Context, opts *options, root string, stdin io.Reader, stdout io.Writer, log *zap.Logger) error {
	rc, err := renderContext(opts.standalone, root, stdin, stdout, log)
	if err != nil {
		return err
	}

	path, err := epub.Generate(ctx, rc, epub.WithLogger(log))
	if err != nil {
		return err
	}
	log.Info("book is ready", zap.String("destination", rc.Destination))

	if opts.check {
		report, err := verify.Check(path)
		if err != nil {
			return err
		}
		if err := printReport(stdout, path, report); err != nil {
			return err
		}
	}
	if opts.epubcheck {
		out, err := verify.Epubcheck(ctx, path)
		if err != nil {
			return err
		}
		log.Info("epubcheck passed", zap.String("path", path), zap.String("output", out))
	}
	return nil
}

// renderContext loads the book from root in standalone mode and reads the
// context mdBook pipes in otherwise.
func renderContext(standalone bool, root string, stdin io.Reader, stdout io.Writer, log *zap.Logger) (*book.RenderContext, error) {
	if !standalone {
		fmt.Fprintln(stdout, "Running mdbook-epub as plugin...")
		return book.ParseRenderContext(stdin)
	}

	fmt.Fprintln(stdout, "Running mdbook-epub as standalone app...")
	md, err := book.Load(root)
	if err != nil {
		return nil, errors.Wrapf(err, "book.toml root file is not found by a path %q", root)
	}
	destination := md.Config.BuildDirFor(md.Root, "epub")
	log.Debug("loaded book", zap.String("root", md.Root), zap.String("destination", destination))
	return md.RenderContext(destination), nil
}
