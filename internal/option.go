package internal

import (
	"io"
	"os"

	"github.com/starford/memyaml/internal/history"
)

// Option is a functional option for configuring the application.
type Option func(*application)

type application struct {
	config  *Config
	deckDir string
	name    string
	version string
	in      io.Reader
	out     io.Writer
	errOut  io.Writer

	history *history.DB
}

func newApplication(opts []Option) *application {
	app := &application{
		version: "dev",
		in:      os.Stdin,
		out:     os.Stdout,
		errOut:  os.Stderr,
	}
	for _, opt := range opts {
		opt(app)
	}
	return app
}

// WithConfig sets the application configuration.
func WithConfig(cfg *Config) Option {
	return func(a *application) {
		a.config = cfg
	}
}

// WithDeckDir overrides deck.dir from the configuration.
func WithDeckDir(dir string) Option {
	return func(a *application) {
		a.deckDir = dir
	}
}

// WithDeckName sets the name Init writes into a new deck.
func WithDeckName(name string) Option {
	return func(a *application) {
		a.name = name
	}
}

// WithVersion sets the version reported to MCP clients.
func WithVersion(v string) Option {
	return func(a *application) {
		a.version = v
	}
}

// WithIO replaces stdin, stdout and stderr. Logs go to errOut in the
// interactive commands.
func WithIO(in io.Reader, out, errOut io.Writer) Option {
	return func(a *application) {
		a.in = in
		a.out = out
		a.errOut = errOut
	}
}

func (a *application) dir() string {
	if a.deckDir != "" {
		return a.deckDir
	}
	return a.config.Deck.Dir
}
