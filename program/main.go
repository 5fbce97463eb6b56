package main

import (
	goflag "flag"
	"fmt"
	"io"
	"os"

	tui "github.com/charmbracelet/bubbletea"
	styles "github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/term"
	"github.com/keilerkonzept/sampler-tui-demo/sampler"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"k8s.io/klog/v2"
)

type Config struct {
	// input
	InputPath string
	ChainPath string
	Prompt    int

	// pipeline
	Page         int
	PageSize     int
	DisplayWidth int

	// render
	LogScale     bool
	ViewSplit    int
	StatsEnabled bool
	StatsWindow  int
	AltScreen    bool
	Report       bool
}

var config = Config{
	InputPath: "probs.json",
	ChainPath: "",
	Prompt:    0,

	Page:         1,
	PageSize:     sampler.DefaultPageSize,
	DisplayWidth: sampler.DefaultDisplayWidth,

	LogScale:     false,
	ViewSplit:    40,
	StatsEnabled: true,
	StatsWindow:  256,
	AltScreen:    true,
	Report:       false,
}

var (
	selectedColor = styles.AdaptiveColor{Light: "0", Dark: "9"}
	borderColor   = styles.AdaptiveColor{Light: "#555", Dark: "#555"}
	errorColor    = styles.AdaptiveColor{Light: "1", Dark: "9"}
	selectedFg    = styles.NewStyle().Foreground(selectedColor)
	borderFg      = styles.NewStyle().Foreground(borderColor)
	errorFg       = styles.NewStyle().Foreground(errorColor)
	plotStyle     = styles.NewStyle().
			BorderStyle(styles.NormalBorder()).
			Foreground(borderColor).
			BorderForeground(borderColor)
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		klog.Flush()
		os.Exit(1)
	}
	klog.Flush()
}

func newRootCmd() *cobra.Command {
	klogFlags := goflag.NewFlagSet("klog", goflag.ContinueOnError)
	klog.InitFlags(klogFlags)

	cmd := &cobra.Command{
		Use:   "sampler-tui-demo",
		Short: "Explore temperature, top-k, top-p and min-p sampling on precomputed distributions",
		Long: "Loads token distributions for a set of prompts and shows, interactively, which tokens\n" +
			"survive a user-ordered chain of sampling filters and with what probability.",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := validateAndNormalizeConfig(); err != nil {
				return err
			}
			report := config.Report || !term.IsTerminal(os.Stdout.Fd())
			setupLogging(klogFlags, report)
			return run(cmd.OutOrStdout(), report)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&config.InputPath, "in", config.InputPath, "Read prompts from this JSON file ([[label, {token: prob}], ...])")
	flags.StringVar(&config.ChainPath, "chain", config.ChainPath, "Initial filter chain (JSON list of {name, enabled, params})")
	flags.IntVar(&config.Prompt, "prompt", config.Prompt, "Index of the prompt to start with")
	flags.IntVar(&config.Page, "page", config.Page, "Page of retained tokens to start on")
	flags.IntVar(&config.PageSize, "page-size", config.PageSize, "Retained tokens per page")
	flags.IntVar(&config.DisplayWidth, "display-width", config.DisplayWidth, "Number of bar slots in each filter chart")
	flags.BoolVar(&config.LogScale, "log-scale", config.LogScale, "Use a logarithmic Y axis scale in charts (default: linear)")
	flags.IntVar(&config.ViewSplit, "view-split", config.ViewSplit, "Split the view at this % of the total screen width [20,80]")
	flags.BoolVar(&config.StatsEnabled, "stats", config.StatsEnabled, "Show recompute latency stats")
	flags.IntVar(&config.StatsWindow, "stats-window", config.StatsWindow, "Number of recent samples kept per metric")
	flags.BoolVar(&config.AltScreen, "alt-screen", config.AltScreen, "Use the terminal alternate screen buffer (recommended inside IDE terminals)")
	flags.BoolVar(&config.Report, "report", config.Report, "Print a plain-text report instead of starting the interactive view (implied when stdout is not a terminal)")
	flags.AddGoFlagSet(klogFlags)
	return cmd
}

func validateAndNormalizeConfig() error {
	if config.InputPath == "" {
		return fmt.Errorf("--in must not be empty")
	}
	if config.Prompt < 0 {
		return fmt.Errorf("--prompt must be >= 0")
	}
	if config.Page < 1 {
		return fmt.Errorf("--page must be >= 1")
	}
	if config.PageSize < 1 {
		return fmt.Errorf("--page-size must be >= 1")
	}
	if config.DisplayWidth < 1 {
		return fmt.Errorf("--display-width must be >= 1")
	}
	if config.StatsWindow < 1 {
		return fmt.Errorf("--stats-window must be >= 1")
	}
	config.ViewSplit = max(20, config.ViewSplit)
	config.ViewSplit = min(80, config.ViewSplit)
	if config.StatsWindow < 16 {
		config.StatsWindow = 16
	}
	return nil
}

// setupLogging keeps klog off the terminal while the interactive view owns it.
func setupLogging(fs *goflag.FlagSet, report bool) {
	if report {
		return
	}
	klog.LogToStderr(false)
	if f := fs.Lookup("log_file"); f != nil && f.Value.String() != "" {
		return
	}
	klog.SetOutput(io.Discard)
}

func newSession() (*sampler.Session, error) {
	prompts, err := sampler.LoadPromptsFile(config.InputPath)
	if err != nil {
		return nil, err
	}
	stages := sampler.DefaultStages()
	if config.ChainPath != "" {
		if stages, err = sampler.LoadChainFile(config.ChainPath); err != nil {
			return nil, err
		}
	}
	if config.Prompt >= len(prompts) {
		return nil, errors.Errorf("--prompt %d out of range: %d prompts loaded", config.Prompt, len(prompts))
	}
	klog.V(1).Infof("loaded %d prompts from %s", len(prompts), config.InputPath)

	s := sampler.NewSession(prompts, stages)
	s.PageSize = config.PageSize
	s.DisplayWidth = config.DisplayWidth
	s.Select(config.Prompt)
	s.SetPage(config.Page)
	return s, nil
}

func run(out io.Writer, report bool) error {
	session, err := newSession()
	if err != nil {
		return err
	}
	if report {
		return writeReport(out, session.Recompute(), session.Stages)
	}

	m := newModel(session)
	opts := []tui.ProgramOption{tui.WithInputTTY()}
	if config.AltScreen {
		opts = append(opts, tui.WithAltScreen())
	}
	if _, err := tui.NewProgram(m, opts...).Run(); err != nil {
		return errors.Wrap(err, "run interactive view")
	}
	return nil
}
