package cli

import (
	"context"
	"fmt"
	"io"

	ucli "github.com/urfave/cli/v2"

	"ytgateway/internal/config"
	"ytgateway/pkg/models"
)

// ServeFunc runs the gateway until ctx is done
type ServeFunc func(ctx context.Context, cfg *models.Config) error

// CLI represents the command-line interface
type CLI struct {
	version string
	serve   ServeFunc
	app     *ucli.App
}

// NewCLI creates a new CLI instance
func NewCLI(version string, serve ServeFunc) *CLI {
	c := &CLI{
		version: version,
		serve:   serve,
	}
	c.app = c.newApp()
	return c
}

// SetOutput redirects help and version output
func (c *CLI) SetOutput(stdout, stderr io.Writer) {
	c.app.Writer = stdout
	c.app.ErrWriter = stderr
}

// Run parses args (including the program name) and executes the selected command
func (c *CLI) Run(ctx context.Context, args []string) error {
	return c.app.RunContext(ctx, args)
}

func (c *CLI) newApp() *ucli.App {
	return &ucli.App{
		Name:    "ytgateway",
		Usage:   "HTTP gateway that streams YouTube videos as mp4 downloads",
		Version: c.version,
		Flags:   serveFlags(),
		Action:  c.serveAction,
		Commands: []*ucli.Command{
			{
				Name:   "serve",
				Usage:  "start the HTTP gateway (default)",
				Flags:  serveFlags(),
				Action: c.serveAction,
			},
			{
				Name:  "version",
				Usage: "print version information",
				Action: func(ctx *ucli.Context) error {
					c.PrintVersion(ctx.App.Writer)
					return nil
				},
			},
		},
		HideHelpCommand: true,
	}
}

// PrintVersion prints the version information
func (c *CLI) PrintVersion(w io.Writer) {
	fmt.Fprintf(w, "ytgateway version %s\n", c.version)
}

func serveFlags() []ucli.Flag {
	return []ucli.Flag{
		&ucli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "load configuration from JSON `FILE`",
			EnvVars: []string{"YTGATEWAY_CONFIG"},
		},
		&ucli.StringFlag{
			Name:  "host",
			Usage: "listen on `HOST`",
		},
		&ucli.IntFlag{
			Name:    "port",
			Aliases: []string{"p"},
			Usage:   "listen on `PORT`",
		},
		&ucli.StringFlag{
			Name:  "resolver",
			Usage: "resolver backend: youtube or ytdlp",
		},
		&ucli.StringFlag{
			Name:  "ytdlp-path",
			Usage: "path to the yt-dlp `EXECUTABLE`",
		},
		&ucli.DurationFlag{
			Name:  "upstream-timeout",
			Usage: "limit metadata lookups to `DURATION`",
		},
		&ucli.StringSliceFlag{
			Name:  "allowed-origin",
			Usage: "CORS origin allowed to call the gateway (repeatable)",
		},
		&ucli.StringFlag{
			Name:  "log-level",
			Usage: "debug, info, warn or error",
		},
		&ucli.BoolFlag{
			Name:  "dev",
			Usage: "human readable development logging",
		},
	}
}

func (c *CLI) serveAction(ctx *ucli.Context) error {
	if ctx.NArg() > 0 {
		return fmt.Errorf("unknown command: %s", ctx.Args().First())
	}

	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}

	return c.serve(ctx.Context, cfg)
}

// loadConfig layers explicitly set flags over file and environment configuration
func loadConfig(ctx *ucli.Context) (*models.Config, error) {
	cfg, err := config.Load(ctx.String("config"))
	if err != nil {
		return nil, err
	}

	if ctx.IsSet("host") {
		cfg.Host = ctx.String("host")
	}
	if ctx.IsSet("port") {
		cfg.Port = ctx.Int("port")
	}
	if ctx.IsSet("resolver") {
		cfg.Resolver = ctx.String("resolver")
	}
	if ctx.IsSet("ytdlp-path") {
		cfg.YtdlpPath = ctx.String("ytdlp-path")
	}
	if ctx.IsSet("upstream-timeout") {
		cfg.UpstreamTimeout = models.Duration(ctx.Duration("upstream-timeout"))
	}
	if ctx.IsSet("allowed-origin") {
		cfg.AllowedOrigins = ctx.StringSlice("allowed-origin")
	}
	if ctx.IsSet("log-level") {
		cfg.LogLevel = ctx.String("log-level")
	}
	if ctx.IsSet("dev") {
		cfg.LogDevelopment = ctx.Bool("dev")
	}

	if err := config.Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}
