package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/dmitrijs2005/truthchain/internal/client/client"
	"github.com/dmitrijs2005/truthchain/internal/client/config"
	"github.com/urfave/cli/v2"
)

// App holds the state shared by the commands of one invocation.
type App struct {
	config *config.Config
	in     *bufio.Reader
	inFd   int
	out    io.Writer
	errOut io.Writer
}

// NewApp returns the truthctl application reading from in and writing to out
// and errOut.
func NewApp(in io.Reader, out, errOut io.Writer) *cli.App {
	a := &App{
		config: &config.Config{},
		in:     bufio.NewReader(in),
		inFd:   -1,
		out:    out,
		errOut: errOut,
	}
	if f, ok := in.(*os.File); ok {
		a.inFd = int(f.Fd())
	}
	a.config.LoadDefaults()

	return &cli.App{
		Name:      "truthctl",
		Usage:     "submit and inspect TruthChain records",
		Writer:    out,
		ErrWriter: errOut,
		Before:    a.loadConfig,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "JSON configuration file",
				EnvVars: []string{"TRUTHCTL_CONFIG"},
			},
			&cli.StringFlag{
				Name:    "server",
				Aliases: []string{"s"},
				Usage:   "base URL of the TruthChain HTTP API",
				EnvVars: []string{"TRUTHCTL_SERVER"},
				Value:   a.config.ServerURL,
			},
			&cli.StringFlag{
				Name:    "grpc",
				Usage:   "host:port of the gRPC API; list and status use it when set",
				EnvVars: []string{"TRUTHCTL_GRPC"},
			},
			&cli.StringFlag{
				Name:    "journal",
				Usage:   "SQLite file that keeps mined submissions until the server stores them",
				EnvVars: []string{"TRUTHCTL_JOURNAL"},
				Value:   a.config.JournalPath,
			},
			&cli.DurationFlag{
				Name:    "timeout",
				Usage:   "timeout of each API call",
				EnvVars: []string{"TRUTHCTL_TIMEOUT"},
				Value:   a.config.RequestTimeout,
			},
		},
		Commands: []*cli.Command{
			a.fingerprintCommand(),
			a.listCommand(),
			a.statusCommand(),
			a.submitCommand(),
			a.pendingCommand(),
			a.retryCommand(),
		},
	}
}

// loadConfig layers the JSON file, then environment and flags, over the
// defaults.
func (a *App) loadConfig(c *cli.Context) error {
	if path := c.String("config"); path != "" {
		if err := config.LoadJSON(a.config, path); err != nil {
			return err
		}
	}
	if c.IsSet("server") {
		a.config.ServerURL = c.String("server")
	}
	if c.IsSet("grpc") {
		a.config.GRPCAddr = c.String("grpc")
	}
	if c.IsSet("journal") {
		a.config.JournalPath = c.String("journal")
	}
	if c.IsSet("timeout") {
		a.config.RequestTimeout = c.Duration("timeout")
	}
	return nil
}

func (a *App) httpClient() *client.HTTPClient {
	return a.httpClientFor(a.config.ServerURL)
}

func (a *App) httpClientFor(baseURL string) *client.HTTPClient {
	return client.NewHTTPClient(baseURL, &http.Client{Timeout: a.config.RequestTimeout})
}

func (a *App) reader() (client.Reader, error) {
	if a.config.GRPCAddr != "" {
		return client.NewGRPCClient(a.config.GRPCAddr)
	}
	return a.httpClient(), nil
}

func (a *App) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if a.config.RequestTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, a.config.RequestTimeout)
}

func (a *App) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}

func shortHash(h string) string {
	if len(h) > 16 {
		return h[:16] + "..."
	}
	return h
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.UTC().Format(time.RFC3339)
}
