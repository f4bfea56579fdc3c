package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/pagesmith/internal"
	pkgconfig "github.com/starford/pagesmith/pkg/config"
)

const defaultConfigPath = "config/config.yaml"

type runFunc func(ctx context.Context, opts ...internal.Option) error

func options(cmd *cli.Command) ([]internal.Option, error) {
	configPath := cmd.String("config")

	cfg := internal.NewDefaultConfig()
	load := pkgconfig.Load[internal.Config]
	// Without an explicit --config the defaults alone are enough to run.
	if !cmd.IsSet("config") {
		load = pkgconfig.LoadOptional[internal.Config]
	}
	if err := load(configPath, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return []internal.Option{
		internal.WithConfig(cfg),
		internal.WithForce(cmd.Bool("force")),
	}, nil
}

func action(name string, run runFunc) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		opts, err := options(cmd)
		if err != nil {
			return err
		}
		if err := run(ctx, opts...); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		return nil
	}
}

func main() {
	cmd := &cli.Command{
		Name:   "pagesmith",
		Usage:  "Build structured HTML pages from a tree of Markdown documents",
		Action: action("build", internal.Build),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file",
				DefaultText: defaultConfigPath,
				Value:       defaultConfigPath,
				Sources:     cli.EnvVars("APP_CONFIG_FILE"),
			},
			&cli.BoolFlag{
				Name:  "force",
				Usage: "Rebuild every page, ignoring the build manifest",
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "build",
				Usage:  "Render the site once",
				Action: action("build", internal.Build),
			},
			{
				Name:   "serve",
				Usage:  "Build, then serve the site with live reload",
				Action: action("serve", internal.Serve),
			},
			{
				Name:   "mcp",
				Usage:  "Serve authoring tools over MCP stdio",
				Action: action("mcp", internal.MCP),
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
