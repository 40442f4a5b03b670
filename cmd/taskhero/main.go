// taskhero is a gamified task tracker: complete goals to earn points, redeem
// points for rewards, and level up every 5000 points earned.
//
// Usage:
//
//	taskhero status                               Show level, progress and balance
//	taskhero goals [category]                     List goals by category
//	taskhero rewards                              List rewards
//	taskhero complete <goal>...                   Earn the points of the given goals
//	taskhero redeem <reward>...                   Spend points on the given rewards
//	taskhero edit-goal <goal> <name> <points>     Rename and re-price a goal
//	taskhero edit-reward <reward> <name> <points> Rename and re-price a reward
//	taskhero add-goal <category> <name> <points>  Add a goal
//	taskhero add-reward <name> <points>           Add a reward
//
// Goals and rewards are referenced by ID or by name.
package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/taskhero/taskhero/internal/config"
	"github.com/taskhero/taskhero/internal/progress"
	"github.com/taskhero/taskhero/internal/store"
	"github.com/taskhero/taskhero/internal/tracker"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "taskhero: loading .env: %v\n", err)
	}
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// options holds the global flags.
type options struct {
	configPath string
	dataPath   string
}

// parseArgs extracts the subcommand, positional args, and the --config and
// --data paths.
func parseArgs(raw []string) (command string, args []string, opts options) {
	opts.configPath = os.Getenv("TASKHERO_CONFIG")

	var filtered []string
	for i := 0; i < len(raw); i++ {
		switch {
		case raw[i] == "--config" && i+1 < len(raw):
			opts.configPath = raw[i+1]
			i++
		case raw[i] == "--data" && i+1 < len(raw):
			opts.dataPath = raw[i+1]
			i++
		default:
			filtered = append(filtered, raw[i])
		}
	}

	if len(filtered) == 0 {
		return "", nil, opts
	}
	return filtered[0], filtered[1:], opts
}

func printUsage(w io.Writer) {
	fmt.Fprintf(w, `taskhero %s

Usage:
  taskhero [--config <path>] [--data <path>] <command> [arguments]

Commands:
  status                                Show level, progress and points available
  goals [category]                      List goals by category
  rewards                               List rewards
  complete <goal>...                    Earn the points of the given goals
  redeem <reward>...                    Spend points on the given rewards
  edit-goal <goal> <name> <points>      Rename and re-price a goal
  edit-reward <reward> <name> <points>  Rename and re-price a reward
  add-goal <category> <name> <points>   Add a goal to a category
  add-reward <name> <points>            Add a reward
  version                               Print the taskhero version

Goals and rewards can be given by ID or by name.

Options:
  --config <path>   Path to config file (default: ~/.taskhero/config.yaml)
  --data <path>     Path to data file (default: ~/.taskhero/taskhero.json)

Environment:
  TASKHERO_CONFIG      Override config file path
  TASKHERO_DATA_FILE   Override data file path
  TASKHERO_LOG_LEVEL   debug, info, warn or error
  TASKHERO_LOG_FORMAT  text or json
`, version)
}

func run(raw []string, stdout, stderr io.Writer) int {
	cmd, args, opts := parseArgs(raw)

	switch cmd {
	case "", "help", "--help", "-h":
		printUsage(stdout)
		if cmd == "" {
			return 1
		}
		return 0
	case "version", "--version", "-v":
		fmt.Fprintf(stdout, "taskhero version %s\n", version)
		return 0
	}

	a, err := open(opts, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "taskhero: %v\n", err)
		return 1
	}
	a.out = stdout

	switch cmd {
	case "status":
		err = a.cmdStatus()
	case "goals":
		err = a.cmdGoals(args)
	case "rewards":
		err = a.cmdRewards()
	case "complete":
		err = a.cmdComplete(args)
	case "redeem":
		err = a.cmdRedeem(args)
	case "edit-goal":
		err = a.cmdEditGoal(args)
	case "edit-reward":
		err = a.cmdEditReward(args)
	case "add-goal":
		err = a.cmdAddGoal(args)
	case "add-reward":
		err = a.cmdAddReward(args)
	default:
		fmt.Fprintf(stderr, "taskhero: unknown command %q\n\n", cmd)
		printUsage(stderr)
		return 1
	}

	if err != nil {
		fmt.Fprintln(stderr, errorMessage(err))
		return 1
	}
	return 0
}

// errorMessage renders core errors the way the user should read them.
func errorMessage(err error) string {
	switch {
	case errors.Is(err, progress.ErrInsufficientBalance):
		return "Not enough points"
	case errors.Is(err, tracker.ErrNoSelection):
		return "Please select an option"
	default:
		return fmt.Sprintf("taskhero: %v", err)
	}
}

type app struct {
	tr  *tracker.Tracker
	out io.Writer
	p   *message.Printer
}

func open(opts options, stderr io.Writer) (*app, error) {
	var (
		cfg *config.Config
		err error
	)
	if opts.configPath != "" {
		cfg, err = config.LoadFrom(opts.configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}
	if opts.dataPath != "" {
		cfg.DataFile = opts.dataPath
	}

	tr, err := tracker.Open(cfg.DataFile, newLogger(cfg, stderr))
	if err != nil {
		return nil, err
	}
	if tr.Status == store.StatusRepaired {
		fmt.Fprintf(stderr, "taskhero: %s could not be read and was reset to defaults\n", cfg.DataFile)
	}

	return &app{tr: tr, p: message.NewPrinter(language.English)}, nil
}

func newLogger(cfg *config.Config, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.SlogLevel()}
	if cfg.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// parsePoints validates numeric input at the command-line boundary.
func parsePoints(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("points must be a whole number, got %q", s)
	}
	return n, nil
}

// ---------------------------------------------------------------------------
// taskhero status / goals / rewards
// ---------------------------------------------------------------------------

func (a *app) cmdStatus() error {
	pr := a.tr.Progress
	a.p.Fprintf(a.out, "User Level: %d\n", pr.Level())
	a.p.Fprintf(a.out, "Points: %d/%d (%d%%)\n", pr.PointsForLevel(), progress.PointsPerLevel, pr.Percent())
	a.p.Fprintf(a.out, "Points available: %d\n", pr.Points())
	return nil
}

func (a *app) cmdGoals(args []string) error {
	categories := a.tr.Catalog.Categories()
	if len(args) > 0 {
		categories = args[:1]
	}

	for i, category := range categories {
		if i > 0 {
			fmt.Fprintln(a.out)
		}
		fmt.Fprintf(a.out, "%s Goals\n", category)
		goals := a.tr.Catalog.GoalsIn(category)
		if len(goals) == 0 {
			fmt.Fprintln(a.out, "  (none)")
			continue
		}
		for _, g := range goals {
			a.p.Fprintf(a.out, "  %-30s %10s  %s\n", g.Name, a.p.Sprintf("%d pts", g.Points), g.ID)
		}
	}
	return nil
}

func (a *app) cmdRewards() error {
	a.p.Fprintf(a.out, "Points available: %d\n\n", a.tr.Progress.Points())
	rewards := a.tr.Catalog.Rewards()
	if len(rewards) == 0 {
		fmt.Fprintln(a.out, "  (none)")
		return nil
	}
	for _, r := range rewards {
		a.p.Fprintf(a.out, "  %-30s %10s  %s\n", r.Name, a.p.Sprintf("%d pts", r.Points), r.ID)
	}
	return nil
}

// ---------------------------------------------------------------------------
// taskhero complete / redeem
// ---------------------------------------------------------------------------

func (a *app) cmdComplete(args []string) error {
	before := a.tr.Progress.Level()
	added, err := a.tr.CompleteGoals(args...)
	if err != nil {
		return err
	}

	a.p.Fprintf(a.out, "Points added: %d\n", added)
	if level := a.tr.Progress.Level(); level > before {
		a.p.Fprintf(a.out, "Level up! You are now level %d.\n", level)
	}
	return nil
}

func (a *app) cmdRedeem(args []string) error {
	spent, err := a.tr.RedeemRewards(args...)
	if err != nil {
		return err
	}

	a.p.Fprintf(a.out, "Rewards redeemed. Points deducted: %d\n", spent)
	a.p.Fprintf(a.out, "Points available: %d\n", a.tr.Progress.Points())
	return nil
}

// ---------------------------------------------------------------------------
// taskhero edit-goal / edit-reward / add-goal / add-reward
// ---------------------------------------------------------------------------

func (a *app) cmdEditGoal(args []string) error {
	if len(args) != 3 {
		return fmt.Errorf("usage: taskhero edit-goal <goal> <name> <points>")
	}
	points, err := parsePoints(args[2])
	if err != nil {
		return err
	}

	found, err := a.tr.Catalog.RenameGoal(args[0], args[1], points)
	if err != nil {
		return err
	}
	if !found {
		fmt.Fprintf(a.out, "No goal matches %q, nothing changed.\n", args[0])
		return nil
	}
	if err := a.tr.Catalog.Persist(); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Goals updated successfully!")
	return nil
}

func (a *app) cmdEditReward(args []string) error {
	if len(args) != 3 {
		return fmt.Errorf("usage: taskhero edit-reward <reward> <name> <points>")
	}
	points, err := parsePoints(args[2])
	if err != nil {
		return err
	}

	found, err := a.tr.Catalog.RenameReward(args[0], args[1], points)
	if err != nil {
		return err
	}
	if !found {
		fmt.Fprintf(a.out, "No reward matches %q, nothing changed.\n", args[0])
		return nil
	}
	if err := a.tr.Catalog.Persist(); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Rewards updated successfully!")
	return nil
}

func (a *app) cmdAddGoal(args []string) error {
	if len(args) != 3 {
		return fmt.Errorf("usage: taskhero add-goal <category> <name> <points>")
	}
	points, err := parsePoints(args[2])
	if err != nil {
		return err
	}

	g, err := a.tr.Catalog.AddGoal(args[0], args[1], points)
	if err != nil {
		return err
	}
	if err := a.tr.Catalog.Persist(); err != nil {
		return err
	}
	a.p.Fprintf(a.out, "Goal added: %s (%d pts) %s\n", g.Name, g.Points, g.ID)
	return nil
}

func (a *app) cmdAddReward(args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: taskhero add-reward <name> <points>")
	}
	points, err := parsePoints(args[1])
	if err != nil {
		return err
	}

	r, err := a.tr.Catalog.AddReward(args[0], points)
	if err != nil {
		return err
	}
	if err := a.tr.Catalog.Persist(); err != nil {
		return err
	}
	a.p.Fprintf(a.out, "Reward added: %s (%d pts) %s\n", r.Name, r.Points, r.ID)
	return nil
}
