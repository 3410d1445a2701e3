package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/muurk/econet/internal/config"
	"github.com/muurk/econet/internal/econet"
	"github.com/muurk/econet/internal/memcache"
	"github.com/muurk/econet/internal/tui"
	"github.com/muurk/econet/internal/ui"
)

// PasswordEnvVar supplies the controller password when --password is absent
const PasswordEnvVar = "ECONET_PASSWORD"

// Connection and output flags
var (
	hostFlag       string
	controllerName string
	usernameFlag   string
	passwordFlag   string
	outputFormat   string
	logLevel       string

	assumeYes     bool
	noCheck       bool
	watchInterval time.Duration
)

func init() {
	// Common flags for controller commands (persistent on root)
	rootCmd.PersistentFlags().StringVar(&hostFlag, "host", "", "Controller host or URL (overrides --controller)")
	rootCmd.PersistentFlags().StringVarP(&controllerName, "controller", "c", "", "Controller name from the config file (default: the configured default)")
	rootCmd.PersistentFlags().StringVarP(&usernameFlag, "username", "u", "", "Basic auth username")
	rootCmd.PersistentFlags().StringVarP(&passwordFlag, "password", "p", "", "Basic auth password (env: "+PasswordEnvVar+")")
	rootCmd.PersistentFlags().StringVar(&outputFormat, "format", "detailed", "Output format (detailed, compact, json)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error); silent by default")

	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(infoCmd)
	rootCmd.AddCommand(limitsCmd)
	rootCmd.AddCommand(setCmd)
	rootCmd.AddCommand(watchCmd)
}

// session is a connected controller plus how it was reached
type session struct {
	api    *econet.API
	target config.Target
}

func (s *session) label() string {
	if s.target.Name != "" {
		return fmt.Sprintf("%s (%s)", s.target.Name, s.api.Host())
	}
	return s.api.Host()
}

// resolvePassword applies --password, then ECONET_PASSWORD, then a prompt
func resolvePassword(target config.Target) (string, error) {
	if passwordFlag != "" {
		return passwordFlag, nil
	}
	if env := os.Getenv(PasswordEnvVar); env != "" {
		return env, nil
	}
	return ui.ReadPassword(fmt.Sprintf("Password for %s@%s: ", target.Username, target.Host))
}

// connect resolves the target controller and reads its identity
func connect(ctx context.Context) (*session, error) {
	registry, err := config.LoadRegistry()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	target, err := registry.ResolveTarget(controllerName, hostFlag, usernameFlag)
	if err != nil {
		return nil, err
	}

	password, err := resolvePassword(target)
	if err != nil {
		return nil, err
	}

	client := econet.NewClient(target.Host, target.Username, password, &http.Client{})
	api, err := econet.Create(ctx, client, memcache.New())
	if err != nil {
		return nil, err
	}
	return &session{api: api, target: target}, nil
}

// requireParam fails for names without a device index
func requireParam(api *econet.API, name string) (string, error) {
	idx, ok := api.ParamMap().Index(name)
	if !ok {
		return "", fmt.Errorf("unknown parameter %q (known: %s)", name, strings.Join(api.ParamMap().Names(), ", "))
	}
	return idx, nil
}

func printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	fmt.Println(string(data))
	return nil
}

// showCmd displays the merged parameter record
var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show controller parameters",
	Long: `Fetch the regular, system and editable registries and print the
merged parameter record.

Editable parameters appear under their device index (e.g. 1280) with
their current value.`,
	Example: `  # Show parameters of the default controller
  econet-cfg show

  # Show parameters of a specific host
  econet-cfg show --host 192.168.1.50

  # JSON output for scripting
  econet-cfg show --format json`,
	Args: cobra.NoArgs,
	RunE: runShow,
}

func runShow(cmd *cobra.Command, args []string) error {
	s, err := connect(cmd.Context())
	if err != nil {
		return err
	}

	params, err := s.api.FetchData(cmd.Context())
	if err != nil {
		return err
	}

	switch outputFormat {
	case "compact":
		fmt.Println(params.FormatCompact())
	case "json":
		return printJSON(params)
	case "detailed":
		fallthrough
	default:
		p := ui.NewPrinter(os.Stdout)
		p.PrintHeader("Controller parameters", "econet-cfg show", map[string]string{
			"Controller": s.label(),
			"UID":        s.api.UID(),
		})
		p.Println(params.FormatDetailed())
	}
	return nil
}

// infoCmd displays controller identity
var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show controller identity",
	Long: `Display the identity reported by the controller's system registry:
UID, software revision, hardware version and model.

Values the controller did not report are shown as default placeholders.`,
	Args: cobra.NoArgs,
	RunE: runInfo,
}

func runInfo(cmd *cobra.Command, args []string) error {
	s, err := connect(cmd.Context())
	if err != nil {
		return err
	}

	switch outputFormat {
	case "compact":
		fmt.Println(s.api.Identity().Summary())
	case "json":
		return printJSON(s.api.DeviceInfo())
	default:
		p := ui.NewPrinter(os.Stdout)
		p.PrintHeader("Controller identity", "econet-cfg info", map[string]string{
			"Controller": s.label(),
		})
		p.Println(s.api.Identity().FormatDetailed())
	}
	return nil
}

// limitsCmd displays the permitted range of editable parameters
var limitsCmd = &cobra.Command{
	Use:   "limits [param...]",
	Short: "Show editable parameter limits",
	Long: `Display the minimum and maximum the controller accepts for
editable parameters. Without arguments every mapped parameter is listed.`,
	Example: `  econet-cfg limits
  econet-cfg limits tempCOSet tempCWUSet`,
	RunE: runLimits,
}

func runLimits(cmd *cobra.Command, args []string) error {
	s, err := connect(cmd.Context())
	if err != nil {
		return err
	}

	names := args
	if len(names) == 0 {
		names = s.api.ParamMap().Names()
	}

	result := make(map[string]*econet.Limits, len(names))
	for _, name := range names {
		if _, err := requireParam(s.api, name); err != nil {
			return err
		}
		limits, err := s.api.GetParamLimits(cmd.Context(), name)
		if err != nil {
			return err
		}
		result[name] = limits
	}

	if outputFormat == "json" {
		return printJSON(result)
	}

	sort.Strings(names)
	width := 0
	for _, name := range names {
		if len(name) > width {
			width = len(name)
		}
	}
	for _, name := range names {
		idx, _ := s.api.ParamMap().Index(name)
		limits := "not reported"
		if result[name] != nil {
			limits = result[name].String()
		}
		fmt.Printf("%-*s  %-5s  %s\n", width, name, idx, limits)
	}
	return nil
}

// setCmd writes a parameter
var setCmd = &cobra.Command{
	Use:   "set <param> <value>",
	Short: "Write a controller parameter",
	Long: `Write a value to an editable parameter such as tempCOSet.

The value is checked against the limits the controller publishes and
the change is confirmed interactively before it is sent. The controller
must answer with result OK for the write to count as successful.`,
	Example: `  # Set the boiler setpoint
  econet-cfg set tempCOSet 55

  # Skip the confirmation prompt
  econet-cfg set tempCWUSet 48 --yes

  # Skip limit validation
  econet-cfg set mixerSetTemp1 35 --no-check`,
	Args: cobra.ExactArgs(2),
	RunE: runSet,
}

func init() {
	setCmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "Do not ask for confirmation")
	setCmd.Flags().BoolVar(&noCheck, "no-check", false, "Skip validation against controller limits")
}

// parseValue keeps numbers numeric so they are sent in canonical form
func parseValue(raw string) any {
	if v, err := strconv.ParseFloat(raw, 64); err == nil {
		return v
	}
	return raw
}

func runSet(cmd *cobra.Command, args []string) error {
	name, value := args[0], parseValue(args[1])
	ctx := cmd.Context()

	s, err := connect(ctx)
	if err != nil {
		return err
	}
	idx, err := requireParam(s.api, name)
	if err != nil {
		return err
	}

	limitsText := "not checked"
	if !noCheck {
		limits, err := s.api.GetParamLimits(ctx, name)
		if err != nil {
			return err
		}
		if limits == nil {
			limitsText = "not reported"
		} else {
			limitsText = limits.String()
			if err := limits.Validate(name, value); err != nil {
				return err
			}
		}
	}

	wire := econet.WireValue(value)
	if !assumeYes {
		lines := []string{
			"Controller: " + s.label(),
			fmt.Sprintf("Parameter:  %s (index %s)", name, idx),
			"New value:  " + wire,
			"Limits:     " + limitsText,
		}
		if !ui.ConfirmChange(os.Stdin, os.Stdout, name, lines) {
			return nil
		}
	}

	ok, err := s.api.SetParam(ctx, name, value)
	if err != nil {
		return err
	}

	p := ui.NewPrinter(os.Stdout)
	details := map[string]string{
		"Parameter": name,
		"Index":     idx,
		"Value":     wire,
	}
	if !ok {
		p.PrintWarning("Controller did not confirm the write", details)
		return fmt.Errorf("write of %s=%s not confirmed", name, wire)
	}
	p.PrintSuccess("Parameter written", details)
	return nil
}

// watchCmd launches the live dashboard
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch controller parameters live",
	Long: `Poll the controller on an interval and display every parameter in a
terminal dashboard. Values that changed on the latest poll are
highlighted.

Keys: r refresh, p pause, ↑/↓ scroll, ? help, q quit.`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().DurationVar(&watchInterval, "interval", 0, "Poll interval (default: poll_interval from config, 30s)")
}

func runWatch(cmd *cobra.Command, args []string) error {
	s, err := connect(cmd.Context())
	if err != nil {
		return err
	}

	interval := watchInterval
	if interval <= 0 {
		registry, err := config.LoadRegistry()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		interval = registry.PollInterval()
	}

	return tui.Run(cmd.Context(), s.label(), interval, s.api.FetchData)
}
