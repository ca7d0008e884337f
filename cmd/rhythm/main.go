// Command rhythm computes charts and rhythm documents offline, printing JSON
// or Markdown.
//
//	rhythm day --birth-date 1990-01-15 --birth-time 14:30 --gender male --place Seoul --date 2026-01-21
//	rhythm range --from 2026-01-01 --to 2026-01-07 --role student --format markdown ...
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/rhythm-hub/rhythm-core/internal/application/query"
	"github.com/rhythm-hub/rhythm-core/internal/domain/birth"
	"github.com/rhythm-hub/rhythm-core/internal/domain/role"
	"github.com/rhythm-hub/rhythm-core/internal/interface/presenter"
	"github.com/rhythm-hub/rhythm-core/pkg/logger"
	"github.com/rhythm-hub/rhythm-core/pkg/timeutil"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand(os.Stdout, os.Stderr).ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// ROOT COMMAND
// ══════════════════════════════════════════════════════════════════════════════

// cli holds the flags shared by every subcommand.
type cli struct {
	name      string
	birthDate string
	birthTime string
	gender    string
	place     string
	lat, lng  float64
	utcOffset int

	role      string
	format    string
	logLevel  string
	workers   int
	maxDays   int
	semantics bool

	out io.Writer
	log *logger.Logger

	pipeline  *query.Pipeline
	presenter *presenter.MarkdownPresenter
}

func newRootCommand(out, errOut io.Writer) *cobra.Command {
	c := &cli{out: out, presenter: presenter.NewMarkdownPresenter()}

	root := &cobra.Command{
		Use:           "rhythm",
		Short:         "Compute four-pillars charts and rhythm documents",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			c.log = logger.New(logger.Options{Output: errOut, Level: logger.ParseLevel(c.logLevel)})
			c.pipeline = query.NewPipeline(query.PipelineConfig{
				Logger:          c.log,
				StrictSemantics: c.semantics,
			})
			return nil
		},
	}
	root.SetOut(out)
	root.SetErr(errOut)

	f := root.PersistentFlags()
	f.StringVar(&c.name, "name", "", "display name (not used in calculations)")
	f.StringVar(&c.birthDate, "birth-date", "", "birth date, YYYY-MM-DD")
	f.StringVar(&c.birthTime, "birth-time", "", "birth time, HH:MM")
	f.StringVar(&c.gender, "gender", "", "male or female")
	f.StringVar(&c.place, "place", "", "birth place name")
	f.Float64Var(&c.lat, "lat", 0, "birth place latitude")
	f.Float64Var(&c.lng, "lng", 0, "birth place longitude; enables solar time correction")
	f.IntVar(&c.utcOffset, "utc-offset", timeutil.KSTOffsetMinutes, "civil UTC offset of the birth place in minutes")
	f.StringVar(&c.role, "role", "", "student, office_worker or freelancer; empty for neutral")
	f.StringVarP(&c.format, "format", "o", "json", "output format: json or markdown")
	f.StringVar(&c.logLevel, "log-level", "warn", "log level written to stderr")
	f.IntVar(&c.workers, "workers", 4, "parallel days for range")
	f.IntVar(&c.maxDays, "max-days", 31, "longest allowed range")
	f.BoolVar(&c.semantics, "strict-semantics", false, "fail translations that carry length warnings")
	for _, name := range []string{"birth-date", "birth-time", "gender"} {
		_ = root.MarkPersistentFlagRequired(name)
	}

	root.AddCommand(
		c.chartCommand(),
		c.dayCommand(),
		c.rangeCommand(),
		c.monthCommand(),
		c.yearCommand(),
	)
	return root
}

// birthInfo builds the birth record from flags. Coordinates count only when given.
func (c *cli) birthInfo(cmd *cobra.Command) (birth.Info, error) {
	params := birth.NewInfoParams{
		Name:      c.name,
		BirthDate: c.birthDate,
		BirthTime: c.birthTime,
		Gender:    c.gender,
		PlaceName: c.place,
		UTCOffset: &c.utcOffset,
	}
	if cmd.Flags().Changed("lat") {
		params.Latitude = &c.lat
	}
	if cmd.Flags().Changed("lng") {
		params.Longitude = &c.lng
	}
	return birth.NewInfo(params)
}

func (c *cli) parsedRole() (role.Role, error) {
	return role.ParseRole(c.role)
}

func (c *cli) markdown() (bool, error) {
	switch strings.ToLower(c.format) {
	case "json", "":
		return false, nil
	case "markdown", "md":
		return true, nil
	default:
		return false, fmt.Errorf("unknown format %q: want json or markdown", c.format)
	}
}

func (c *cli) writeJSON(v any) error {
	enc := json.NewEncoder(c.out)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

// today is the current civil date at the configured offset.
func (c *cli) today() time.Time {
	return timeutil.DateOf(time.Now().In(timeutil.FixedZone(c.utcOffset)))
}

func (c *cli) dateFlag(cmd *cobra.Command, name string) (time.Time, error) {
	v, _ := cmd.Flags().GetString(name)
	if v == "" {
		return c.today(), nil
	}
	return timeutil.ParseDate(v)
}
