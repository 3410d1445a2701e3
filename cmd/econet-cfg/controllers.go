package main

import (
	"fmt"
	"net/http"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/muurk/econet/internal/config"
	"github.com/muurk/econet/internal/econet"
	"github.com/muurk/econet/internal/memcache"
	"github.com/muurk/econet/internal/ui"
)

var (
	nicknameFlag string
	noProbe      bool
	makeDefault  bool
)

func init() {
	controllersCmd.AddCommand(controllersAddCmd)
	controllersCmd.AddCommand(controllersListCmd)
	controllersCmd.AddCommand(controllersRemoveCmd)
	rootCmd.AddCommand(controllersCmd)

	controllersAddCmd.Flags().StringVar(&nicknameFlag, "nickname", "", "User-friendly name shown in listings")
	controllersAddCmd.Flags().BoolVar(&noProbe, "no-probe", false, "Store the controller without connecting to it")
	controllersAddCmd.Flags().BoolVar(&makeDefault, "default", false, "Make this the default controller")
}

var controllersCmd = &cobra.Command{
	Use:   "controllers",
	Short: "Manage known controllers",
	Long: `Manage the controllers stored in the config file.

Stored controllers can be selected with --controller <name>; the
default one is used when neither --controller nor --host is given.`,
}

var controllersAddCmd = &cobra.Command{
	Use:   "add <name> <host>",
	Short: "Add or update a controller",
	Long: `Store a controller under a name. Unless --no-probe is given the
controller is contacted first and its UID and software revision are
recorded. The password is never stored.`,
	Example: `  econet-cfg controllers add boiler 192.168.1.50
  econet-cfg controllers add garage http://10.0.0.7 --username service --default`,
	Args: cobra.ExactArgs(2),
	RunE: runControllersAdd,
}

func runControllersAdd(cmd *cobra.Command, args []string) error {
	name, host := args[0], args[1]

	registry, err := config.LoadRegistry()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	username := usernameFlag
	if username == "" {
		username = registry.DefaultUsername()
	}

	var identity *econet.Identity
	if !noProbe {
		target := config.Target{Name: name, Host: host, Username: username}
		password, err := resolvePassword(target)
		if err != nil {
			return err
		}
		client := econet.NewClient(host, username, password, &http.Client{})
		api, err := econet.Create(cmd.Context(), client, memcache.New())
		if err != nil {
			return err
		}
		id := api.Identity()
		identity = &id
	}

	c := registry.AddController(name, econet.NormalizeHost(host), username)
	if nicknameFlag != "" {
		registry.SetNickname(name, nicknameFlag)
	}
	if makeDefault {
		registry.Preferences.DefaultController = name
	}
	if identity != nil {
		registry.RecordConnection(name, identity.UID, identity.SoftwareRevision)
	}

	if err := registry.Save(); err != nil {
		return err
	}

	details := map[string]string{
		"Name":     name,
		"Host":     c.Host,
		"Username": c.Username,
	}
	if identity != nil {
		details["UID"] = identity.UID
		details["Software"] = identity.SoftwareRevision
	}
	ui.NewPrinter(os.Stdout).PrintSuccess("Controller saved", details)
	return nil
}

var controllersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List known controllers",
	Args:  cobra.NoArgs,
	RunE:  runControllersList,
}

func runControllersList(cmd *cobra.Command, args []string) error {
	registry, err := config.LoadRegistry()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	names := registry.ControllerNames()
	if outputFormat == "json" {
		return printJSON(registry.Controllers)
	}
	if len(names) == 0 {
		fmt.Println("No controllers configured.")
		fmt.Println("Use 'econet-cfg controllers add <name> <host>' to add one.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tHOST\tUSER\tUID\tLAST SEEN")
	for _, name := range names {
		c := registry.GetController(name)
		display := name
		if name == registry.Preferences.DefaultController {
			display += " *"
		}
		if c.Nickname != "" {
			display += " (" + c.Nickname + ")"
		}
		lastSeen := "-"
		if !c.LastSeen.IsZero() {
			lastSeen = c.LastSeen.Format("2006-01-02 15:04")
		}
		uid := c.LastUID
		if uid == "" {
			uid = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", display, c.Host, c.Username, uid, lastSeen)
	}
	return w.Flush()
}

var controllersRemoveCmd = &cobra.Command{
	Use:   "remove <name>",
	Short: "Remove a controller",
	Args:  cobra.ExactArgs(1),
	RunE:  runControllersRemove,
}

func runControllersRemove(cmd *cobra.Command, args []string) error {
	registry, err := config.LoadRegistry()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if !registry.RemoveController(args[0]) {
		return fmt.Errorf("controller %q not found in config", args[0])
	}
	if err := registry.Save(); err != nil {
		return err
	}

	fmt.Printf("Removed controller %s\n", args[0])
	return nil
}
