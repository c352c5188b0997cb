package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/subcommands"

	"stockwatch/internal/platform/config"
	jwtmw "stockwatch/internal/platform/jwt"
)

// refreshCmd runs one refresh synchronously.
type refreshCmd struct {
	timeout time.Duration
}

func (*refreshCmd) Name() string     { return "refresh" }
func (*refreshCmd) Synopsis() string { return "fetch quotes for every watched symbol now" }
func (*refreshCmd) Usage() string {
	return `stockctl refresh [-timeout <duration>]

  Runs the refresh job once and prints which symbols were stored, pruned or skipped.
`
}

func (c *refreshCmd) SetFlags(f *flag.FlagSet) {
	f.DurationVar(&c.timeout, "timeout", 5*time.Minute, "give up after this long")
}

func (c *refreshCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	return withSession(ctx, func(ctx context.Context, s *session) error {
		res, err := s.app.Refresh.Sync(ctx)
		if err != nil {
			return err
		}
		printMarkdown(resultMarkdown(res))
		return nil
	})
}

// listCmd prints the stored quotes as the list screen shows them.
type listCmd struct {
	widget bool
}

func (*listCmd) Name() string     { return "list" }
func (*listCmd) Synopsis() string { return "display stored quotes" }
func (*listCmd) Usage() string {
	return `stockctl list [-widget]

  Displays every stored quote, with the change in the current display mode.
`
}

func (c *listCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.widget, "widget", false, "show the widget rows instead of the list rows")
}

func (c *listCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return withSession(ctx, func(ctx context.Context, s *session) error {
		load := s.app.Quotes.ListQuotes
		if c.widget {
			load = s.app.Quotes.ListWidgetRows
		}
		rows, err := load(ctx)
		if err != nil {
			return err
		}
		printMarkdown(rowsMarkdown(rows))
		return nil
	})
}

// showCmd prints one symbol with its weekly chart.
type showCmd struct{}

func (*showCmd) Name() string     { return "show" }
func (*showCmd) Synopsis() string { return "display one quote and its weekly history" }
func (*showCmd) Usage() string {
	return `stockctl show <symbol>

  Displays the stored quote and the most recent weeks of closing prices.
`
}

func (*showCmd) SetFlags(*flag.FlagSet) {}

func (*showCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "show takes exactly one symbol")
		return subcommands.ExitUsageError
	}
	return withSession(ctx, func(ctx context.Context, s *session) error {
		d, err := s.app.Quotes.GetQuoteDetail(ctx, f.Arg(0))
		if err != nil {
			return err
		}
		printMarkdown(detailMarkdown(d))
		return nil
	})
}

// addCmd adds a symbol and refreshes.
type addCmd struct {
	noSync bool
}

func (*addCmd) Name() string     { return "add" }
func (*addCmd) Synopsis() string { return "watch a symbol" }
func (*addCmd) Usage() string {
	return `stockctl add [-no-sync] <symbol>

  Adds the symbol to the watchlist and runs a refresh so its quote is stored.
  A symbol the data source cannot resolve is removed again by that refresh.
`
}

func (c *addCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.noSync, "no-sync", false, "do not refresh after adding")
}

func (c *addCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "add takes exactly one symbol")
		return subcommands.ExitUsageError
	}
	return withSession(ctx, func(ctx context.Context, s *session) error {
		if err := s.app.Watchlist.AddSymbol(ctx, f.Arg(0)); err != nil {
			return err
		}
		if c.noSync {
			return nil
		}
		res, err := s.app.Refresh.Sync(ctx)
		if err != nil {
			return err
		}
		printMarkdown(resultMarkdown(res))
		return nil
	})
}

// removeCmd stops watching a symbol and drops its stored quote.
type removeCmd struct{}

func (*removeCmd) Name() string     { return "remove" }
func (*removeCmd) Synopsis() string { return "stop watching a symbol" }
func (*removeCmd) Usage() string {
	return `stockctl remove <symbol>

  Removes the symbol from the watchlist and deletes its stored quote.
`
}

func (*removeCmd) SetFlags(*flag.FlagSet) {}

func (*removeCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "remove takes exactly one symbol")
		return subcommands.ExitUsageError
	}
	return withSession(ctx, func(ctx context.Context, s *session) error {
		return removeSymbol(ctx, s, f.Arg(0))
	})
}

// modeCmd shows or toggles the display mode.
type modeCmd struct {
	toggle bool
}

func (*modeCmd) Name() string     { return "mode" }
func (*modeCmd) Synopsis() string { return "show or toggle the change display mode" }
func (*modeCmd) Usage() string {
	return `stockctl mode [-toggle]

  Prints the display mode (absolute or percentage). With -toggle, flips it first.
`
}

func (c *modeCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.toggle, "toggle", false, "flip between absolute and percentage")
}

func (c *modeCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return withSession(ctx, func(ctx context.Context, s *session) error {
		if !c.toggle {
			m, err := s.app.Watchlist.GetDisplayMode(ctx)
			if err != nil {
				return err
			}
			fmt.Println(m)
			return nil
		}
		m, err := s.app.Watchlist.ToggleDisplayMode(ctx)
		if err != nil {
			return err
		}
		notifyBestEffort(ctx, s)
		fmt.Println(m)
		return nil
	})
}

// tokenCmd issues a bearer token for the mutating HTTP routes.
type tokenCmd struct {
	subject string
}

func (*tokenCmd) Name() string     { return "token" }
func (*tokenCmd) Synopsis() string { return "issue a bearer token for the HTTP API" }
func (*tokenCmd) Usage() string {
	return `stockctl token [-sub <name>]

  Prints an HS256 token signed with JWT_SECRET, valid for JWT_EXPIRATION.
`
}

func (c *tokenCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.subject, "sub", "stockctl", "subject claim of the token")
}

func (c *tokenCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		return subcommands.ExitFailure
	}
	token, err := jwtmw.NewGenerator(cfg.JWT.Secret, cfg.JWT.Expiration).GenerateToken(c.subject)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Println(token)
	return subcommands.ExitSuccess
}
