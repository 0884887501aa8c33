// Package cli implements the jfifmeta command.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/bep/jfifmeta"
	"github.com/bep/jfifmeta/internal/config"
	"github.com/bep/jfifmeta/internal/logger"
	"github.com/bep/jfifmeta/internal/printer"
	"github.com/bep/jfifmeta/internal/source"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Execute runs the root command and exits with status 1 on failure.
func Execute() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	r := &runner{
		stdout: os.Stdout,
		stderr: os.Stderr,
		newGetter: func(cfg config.S3Config) (source.ObjectGetter, error) {
			return source.NewMinioGetter(cfg)
		},
	}

	if err := newRootCommand(r).ExecuteContext(ctx); err != nil {
		logger.Error("%v", err)
		os.Exit(1)
	}
}

type runner struct {
	stdout    io.Writer
	stderr    io.Writer
	newGetter func(config.S3Config) (source.ObjectGetter, error)
}

func newRootCommand(r *runner) *cobra.Command {
	v := viper.New()
	d := config.New()

	cmd := &cobra.Command{
		Use:   "jfifmeta [flags] <file|s3://bucket/key>...",
		Short: "Print JFIF header fields and EXIF metadata of JPEG files",
		Long: `Reads the JFIF APP0 header and the EXIF block of each JPEG given and prints
the decoded tags, sorted by name. Inputs are local paths or s3://bucket/key
objects in S3-compatible storage. Settings can also be given as JFIFMETA_*
environment variables or in a config file.`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.run(cmd.Context(), v, args)
		},
	}

	flags := cmd.Flags()
	flags.String("config", "", "Config file (YAML, TOML or JSON)")
	flags.String("log-level", d.LogLevel, "Log level (debug, info, warn, error)")
	flags.String("mode", d.Mode, "Decode mode (compatible, inline)")
	flags.Int("max-depth", d.MaxIFDDepth, "Maximum sub-IFD nesting")
	flags.Uint32("limit-tags", d.LimitNumTags, "Maximum number of IFD entries per EXIF block")
	flags.String("format", d.Format, "Output format (text, json)")
	flags.Bool("jfif", d.ShowJFIF, "Also print the JFIF header fields")
	flags.String("s3-endpoint", d.S3.Endpoint, "S3 endpoint for s3:// inputs")
	flags.String("s3-region", d.S3.Region, "S3 region")
	flags.String("s3-access-key", d.S3.AccessKey, "S3 access key")
	flags.String("s3-secret-key", d.S3.SecretKey, "S3 secret key")
	flags.Bool("s3-use-ssl", d.S3.UseSSL, "Use SSL for S3")

	for key, flag := range map[string]string{
		"config":        "config",
		"log-level":     "log-level",
		"mode":          "mode",
		"max-depth":     "max-depth",
		"limit-tags":    "limit-tags",
		"format":        "format",
		"jfif":          "jfif",
		"s3.endpoint":   "s3-endpoint",
		"s3.region":     "s3-region",
		"s3.access-key": "s3-access-key",
		"s3.secret-key": "s3-secret-key",
		"s3.use-ssl":    "s3-use-ssl",
	} {
		if err := v.BindPFlag(key, flags.Lookup(flag)); err != nil {
			panic(err)
		}
	}

	return cmd
}

func (r *runner) run(ctx context.Context, v *viper.Viper, args []string) error {
	cfg, err := config.Load(v)
	if err != nil {
		return err
	}
	logger.SetLevel(cfg.LogLevel)

	opts, err := cfg.DecodeOptions()
	if err != nil {
		return err
	}

	p, err := printer.New(r.stdout, cfg.Format, cfg.ShowJFIF)
	if err != nil {
		return err
	}
	p.Header = len(args) > 1

	var opener source.Opener
	if cfg.S3.Endpoint != "" {
		if opener.S3, err = r.newGetter(cfg.S3); err != nil {
			return err
		}
	}

	var failed int
	for _, name := range args {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := r.decodeOne(ctx, opener, opts, p, name); err != nil {
			failed++
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d inputs failed", failed, len(args))
	}
	return nil
}

func (r *runner) decodeOne(ctx context.Context, opener source.Opener, opts jfifmeta.Options, p *printer.Printer, name string) error {
	f, err := opener.Open(ctx, name)
	if err != nil {
		fmt.Fprintf(r.stderr, "can't open file [%s]: %v\n", name, err)
		return err
	}
	defer f.Close()

	opts.R = f
	opts.Logger = logger.Decoder{Name: name}
	doc, err := jfifmeta.Decode(opts)
	if err != nil {
		fmt.Fprintf(r.stderr, "%s: not a JFIF file: %v\n", name, err)
		return err
	}

	return p.Print(name, doc)
}
