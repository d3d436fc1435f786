// Command server serves the game store catalog over HTTP.
package main

import (
	"flag"
	"io"
	"log/slog"
	"os"

	"github.com/simp-lee/gamestore/internal/app"
	"github.com/simp-lee/gamestore/internal/config"
)

const configEnv = "GAMESTORE_CONFIG"

func main() {
	os.Exit(run(os.Args[1:], os.Stderr))
}

// run starts the server and returns the process exit code. Failures before
// the application logger exists go to stderr.
func run(args []string, stderr io.Writer) int {
	boot := slog.New(slog.NewTextHandler(stderr, nil))

	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", defaultConfigPath(), "path to the YAML configuration file (env "+configEnv+")")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		boot.Error("load config", slog.String("path", *configPath), slog.Any("error", err))
		return 1
	}

	a, err := app.New(cfg)
	if err != nil {
		boot.Error("build application", slog.Any("error", err))
		return 1
	}
	if err := a.Run(); err != nil {
		boot.Error("server stopped", slog.Any("error", err))
		return 1
	}
	return 0
}

func defaultConfigPath() string {
	if p := os.Getenv(configEnv); p != "" {
		return p
	}
	return "configs/config.yaml"
}
