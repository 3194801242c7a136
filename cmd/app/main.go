package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/memyaml/internal"
	pkgconfig "github.com/starford/memyaml/pkg/config"
)

var version = "dev"

type entrypoint func(ctx context.Context, opts ...internal.Option) error

// action loads the config and hands the resolved options to fn.
func action(fn entrypoint) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		configPath := cmd.String("config")

		cfg := internal.NewDefaultConfig()
		if err := pkgconfig.LoadOptional(configPath, cfg); err != nil {
			return fmt.Errorf("failed to parse config: %w", err)
		}

		opts := []internal.Option{
			internal.WithConfig(cfg),
			internal.WithVersion(version),
		}
		if dir := cmd.String("dir"); dir != "" {
			opts = append(opts, internal.WithDeckDir(dir))
		}
		if name := cmd.String("name"); name != "" {
			opts = append(opts, internal.WithDeckName(name))
		}

		if err := fn(ctx, opts...); err != nil {
			return fmt.Errorf("%s: %w", cmd.Name, err)
		}
		return nil
	}
}

func dirFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "dir",
		Aliases: []string{"d"},
		Usage:   "Deck directory (overrides deck.dir)",
		Sources: cli.EnvVars("MEMYAML_DECK_DIR"),
	}
}

func main() {
	cmd := &cli.Command{
		Name:    "memyaml",
		Usage:   "Spaced-repetition flashcards kept in plain YAML files",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file",
				DefaultText: "config/config.yaml",
				Value:       "config/config.yaml",
				Sources:     cli.EnvVars("APP_CONFIG_FILE"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:  "init",
				Usage: "Create deck.yaml and a sample card file",
				Flags: []cli.Flag{
					dirFlag(),
					&cli.StringFlag{Name: "name", Usage: "Deck name"},
				},
				Action: action(internal.Init),
			},
			{
				Name:   "start",
				Usage:  "Review due cards in the terminal",
				Flags:  []cli.Flag{dirFlag()},
				Action: action(internal.Review),
			},
			{
				Name:   "status",
				Usage:  "Show deck progress",
				Flags:  []cli.Flag{dirFlag()},
				Action: action(internal.Status),
			},
			{
				Name:   "serve",
				Usage:  "Serve the deck over HTTP with live reload",
				Flags:  []cli.Flag{dirFlag()},
				Action: action(internal.Run),
			},
			{
				Name:   "mcp",
				Usage:  "Serve the deck as MCP tools over stdio",
				Flags:  []cli.Flag{dirFlag()},
				Action: action(internal.ServeMCP),
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
