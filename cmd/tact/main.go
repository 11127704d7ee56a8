// Package main provides the tact binary: translate natural-language
// instructions into command plans and run them under safety gating.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/ormasoftchile/tact/pkg/backends"
	"github.com/ormasoftchile/tact/pkg/config"
	"github.com/ormasoftchile/tact/pkg/intent"
	"github.com/ormasoftchile/tact/pkg/lane"
	"github.com/ormasoftchile/tact/pkg/logging"
	"github.com/ormasoftchile/tact/pkg/plan"
	"github.com/ormasoftchile/tact/pkg/runtime"
	"github.com/ormasoftchile/tact/pkg/safety"
	"github.com/ormasoftchile/tact/pkg/translator"
)

// Version is set at build time via ldflags.
var version = "dev"

var (
	flagConfig   string
	flagYes      bool
	flagNoSafe   bool
	flagStep     bool
	flagDebug    bool
	translateOut string
)

func main() {
	loadDotEnv()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadDotEnv reads a .env file from the working directory and sets
// any variables that aren't already set in the environment. The .env
// file is gitignored so API keys never end up in source control.
func loadDotEnv() {
	f, err := os.Open(".env")
	if err != nil {
		return
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}
		key := strings.TrimSpace(parts[0])
		val := strings.Trim(strings.TrimSpace(parts[1]), `"'`)
		if os.Getenv(key) == "" {
			os.Setenv(key, val)
		}
	}
}

var rootCmd = &cobra.Command{
	Use:   "tact",
	Short: "Translate instructions into command plans and run them",
	Long: `tact turns natural-language automation requests into ordered command
plans across the shell, browser, and desktop backends, previews them,
and executes them under safety gating with failure self-healing.`,
	SilenceUsage: true,
}

var runCmd = &cobra.Command{
	Use:   "run [instruction]",
	Short: "Translate an instruction and run the resulting plan",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runRun,
}

var classifyCmd = &cobra.Command{
	Use:   "classify [text]",
	Short: "Score text against the automation intent classifier",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runClassify,
}

var translateCmd = &cobra.Command{
	Use:   "translate [instruction]",
	Short: "Translate an instruction into a plan without running it",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runTranslate,
}

var execCmd = &cobra.Command{
	Use:   "exec [plan.yaml]",
	Short: "Run a previously saved plan",
	Args:  cobra.ExactArgs(1),
	RunE:  runExec,
}

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Export the translator reply JSON Schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := plan.ReplySchemaJSON()
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("tact %s\n", version)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to config file (default tact.yaml)")
	rootCmd.PersistentFlags().BoolVar(&flagDebug, "debug", false, "Enable debug logging")

	runCmd.Flags().BoolVarP(&flagYes, "yes", "y", false, "Skip preview and confirmation prompts")
	runCmd.Flags().BoolVar(&flagNoSafe, "no-safe-mode", false, "Disable the destructive-command gate")
	runCmd.Flags().BoolVar(&flagStep, "step", false, "Pause between steps")

	execCmd.Flags().BoolVarP(&flagYes, "yes", "y", false, "Skip confirmation prompts")
	execCmd.Flags().BoolVar(&flagNoSafe, "no-safe-mode", false, "Disable the destructive-command gate")
	execCmd.Flags().BoolVar(&flagStep, "step", false, "Pause between steps")

	translateCmd.Flags().StringVarP(&translateOut, "out", "o", "", "Write the plan YAML to this file")

	rootCmd.AddCommand(runCmd, classifyCmd, translateCmd, execCmd, schemaCmd, versionCmd)
}

// app bundles the wired components behind the commands.
type app struct {
	cfg        *config.Config
	log        *zap.Logger
	translator translator.Client
	session    *runtime.Session
}

func buildApp(needTranslator bool) (*app, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, err
	}
	log, err := logging.New(cfg.Debug || flagDebug)
	if err != nil {
		return nil, err
	}

	var tr translator.Client
	if needTranslator {
		llm, err := translator.NewOpenAI(translator.Options{
			Model:       cfg.Translator.Model,
			BaseURL:     cfg.Translator.BaseURL,
			APIKey:      cfg.Translator.APIKey(),
			Temperature: cfg.Translator.Temperature,
		})
		if err != nil {
			return nil, err
		}
		tr = llm
	}

	bridge := &backends.BrowserBridge{Headless: cfg.Backends.Headless}
	desktop := &backends.DesktopBackend{
		CTL:  cfg.Backends.DesktopCTL,
		Exec: &backends.ShellExecutor{},
	}
	gate := &safety.Gate{
		SafeMode:  cfg.SafeModeOn() && !flagNoSafe,
		Confirmer: consoleConfirmer{},
	}

	session := runtime.NewSession(runtime.SessionConfig{
		Translator: tr,
		Gate:       gate,
		StepMode:   cfg.StepMode || flagStep,
		Shell:      &backends.ShellExecutor{},
		Executors: map[lane.Lane]backends.CommandExecutor{
			lane.LaneBrowser: &backends.BrowserExecutor{Bridge: bridge},
		},
		Normalize: &backends.Normalizer{
			BrowserCLI: cfg.Backends.BrowserCLI,
			DesktopCTL: cfg.Backends.DesktopCTL,
		},
		Desktop: desktop,
		Browser: bridge,
		WorkDir: cfg.ProjectRoot,
		BaseDir: filepath.Join(cfg.ProjectRoot, ".tact", "runs"),
		Log:     log,
	})

	return &app{cfg: cfg, log: log, translator: tr, session: session}, nil
}

// runContext cancels the live run on the first interrupt.
func runContext(session *runtime.Session) (context.Context, context.CancelFunc) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	go func() {
		<-ctx.Done()
		session.Cancel()
	}()
	return ctx, stop
}

func runRun(cmd *cobra.Command, args []string) error {
	instruction := strings.Join(args, " ")

	res := intent.Classify(instruction)
	if !res.Automation() {
		fmt.Printf("Not an automation request (score %d, threshold %d).\n",
			res.Score, intent.RouteThreshold)
		return nil
	}

	a, err := buildApp(true)
	if err != nil {
		return err
	}
	defer a.log.Sync()

	ctx, stop := runContext(a.session)
	defer stop()

	if flagYes {
		out, err := a.session.Automate(ctx, instruction)
		return printOutcome(a, out, err)
	}

	p, err := a.translator.Translate(ctx, instruction)
	if err != nil {
		if errors.Is(err, translator.ErrNoCommands) {
			fmt.Println("The translator produced no runnable commands.")
			return nil
		}
		return err
	}

	approved, err := previewConsole(p)
	if err != nil {
		return err
	}
	if !approved {
		fmt.Println("Cancelled; plan discarded.")
		return nil
	}

	return runPlan(ctx, a, p)
}

func runExec(cmd *cobra.Command, args []string) error {
	p, err := plan.Load(args[0])
	if err != nil {
		return err
	}

	a, err := buildApp(true)
	if err != nil {
		return err
	}
	defer a.log.Sync()

	ctx, stop := runContext(a.session)
	defer stop()

	if !flagYes {
		approved, err := previewConsole(p)
		if err != nil {
			return err
		}
		if !approved {
			fmt.Println("Cancelled; plan discarded.")
			return nil
		}
	}
	return runPlan(ctx, a, p)
}

func runPlan(ctx context.Context, a *app, p *plan.Plan) error {
	done := make(chan struct{})
	if a.session.StepGate().Enabled() {
		go stepConsole(a.session.StepGate(), done)
	}
	out, err := a.session.RunPlan(ctx, p)
	close(done)
	return printOutcome(a, out, err)
}

func printOutcome(a *app, out *runtime.Outcome, err error) error {
	if err != nil {
		if errors.Is(err, runtime.ErrRetryBudget) {
			fmt.Printf("\nGave up after %d repair attempts. The failures need manual attention.\n", runtime.MaxRetries)
			printFailures(out.Failed)
			return err
		}
		if errors.Is(err, translator.ErrNoCommands) {
			fmt.Println("The translator produced no runnable commands.")
			return nil
		}
		return err
	}
	if out == nil {
		return nil
	}
	if !out.Routed {
		fmt.Printf("Not an automation request (score %d).\n", out.Intent.Score)
		return nil
	}
	if out.Cancelled {
		fmt.Println("\nRun cancelled.")
		return nil
	}
	if len(out.Failed) > 0 {
		fmt.Println("\nRun finished with failures:")
		printFailures(out.Failed)
	} else if out.Healed {
		fmt.Println("\nRun succeeded after self-healing.")
	} else {
		fmt.Println("\nRun succeeded.")
	}
	if ctrl := a.session.Controller(); ctrl != nil {
		fmt.Printf("Artifacts: %s\n", ctrl.RunDir())
	}
	return nil
}

func printFailures(failed []runtime.TimelineEntry) {
	for _, e := range failed {
		fmt.Printf("  step %d: %s (exit %d)\n", e.StepIndex+1, e.Command, e.ExitCode)
	}
}

func runClassify(cmd *cobra.Command, args []string) error {
	res := intent.Classify(strings.Join(args, " "))
	data, err := json.MarshalIndent(map[string]any{
		"score":      res.Score,
		"automation": res.Automation(),
		"categories": res.Categories,
		"matched":    res.Matched,
	}, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

func runTranslate(cmd *cobra.Command, args []string) error {
	a, err := buildApp(true)
	if err != nil {
		return err
	}
	defer a.log.Sync()

	p, err := a.translator.Translate(context.Background(), strings.Join(args, " "))
	if err != nil {
		return err
	}

	if translateOut != "" {
		if err := p.Save(translateOut); err != nil {
			return err
		}
		fmt.Printf("Plan written to %s\n", translateOut)
		return nil
	}
	data, err := yaml.Marshal(p)
	if err != nil {
		return err
	}
	fmt.Print(string(data))
	return nil
}
