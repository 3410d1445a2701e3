// Econet-server exports a PLUM ecoNET-300 heating controller to Prometheus,
// websocket clients and optionally an MQTT broker.
//
// It polls the controller's registries on a fixed interval, serves the
// results on /metrics, /params and /ws, and, with --mqtt-broker, mirrors
// every snapshot to econet/<uid>/state and accepts writes on
// econet/<uid>/set/<param>.
//
// Usage:
//
//	econet-server serve [flags]
//
// See 'econet-server serve --help' for available options.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/muurk/econet/internal/config"
	"github.com/muurk/econet/internal/econet"
	"github.com/muurk/econet/internal/logging"
	"github.com/muurk/econet/internal/memcache"
	"github.com/muurk/econet/internal/mqtt"
	"github.com/muurk/econet/internal/server"
	"github.com/muurk/econet/internal/version"
)

// PasswordEnvVar supplies the controller password when --password is absent
const PasswordEnvVar = "ECONET_PASSWORD"

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "econet-server",
	Short: "ecoNET-300 Exporter",
	Long: `Polls a PLUM ecoNET-300 heating controller and exports its parameters.

Endpoints:
  /metrics  Prometheus metrics
  /health   liveness
  /params   last snapshot as JSON
  /ws       websocket snapshot stream

Note: For interactive use, see the separate 'econet-cfg' utility.`,
	Version:      version.Version,
	SilenceUsage: true,
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
}

// Serve command flags
var (
	host           string
	controllerName string
	username       string
	password       string
	listen         string
	interval       time.Duration
	logLevel       string

	mqttBroker   string
	mqttClientID string
	mqttUsername string
	mqttPassword string
	mqttQoS      int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the exporter",
	Long: `Connect to the controller, read its identity and start polling.

The controller can be given with --host or taken from the econet-cfg
config file (--controller, or the default controller). The password is
read from --password or ECONET_PASSWORD.`,
	Example: `  # Poll a controller every 30 seconds and serve metrics on :9842
  ECONET_PASSWORD=secret econet-server serve --host 192.168.1.50

  # Use a stored controller and mirror to MQTT
  econet-server serve --controller boiler --mqtt-broker tcp://localhost:1883

  # Custom listen address and interval, debug logging
  econet-server serve --host 192.168.1.50 --listen 127.0.0.1:9100 --interval 10s --log-level debug`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&host, "host", "", "Controller host or URL")
	serveCmd.Flags().StringVar(&controllerName, "controller", "", "Controller name from the config file")
	serveCmd.Flags().StringVar(&username, "username", "", "Basic auth username")
	serveCmd.Flags().StringVar(&password, "password", "", "Basic auth password (env: "+PasswordEnvVar+")")
	serveCmd.Flags().StringVar(&listen, "listen", server.DefaultListen, "HTTP listen address")
	serveCmd.Flags().DurationVar(&interval, "interval", 0, "Poll interval (default: poll_interval from config, 30s)")
	serveCmd.Flags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")

	serveCmd.Flags().StringVar(&mqttBroker, "mqtt-broker", "", "MQTT broker URL, e.g. tcp://localhost:1883 (disabled when empty)")
	serveCmd.Flags().StringVar(&mqttClientID, "mqtt-client-id", mqtt.DefaultClientID, "MQTT client ID")
	serveCmd.Flags().StringVar(&mqttUsername, "mqtt-username", "", "MQTT username")
	serveCmd.Flags().StringVar(&mqttPassword, "mqtt-password", "", "MQTT password")
	serveCmd.Flags().IntVar(&mqttQoS, "mqtt-qos", 1, "MQTT QoS level (0, 1 or 2)")
}

func runServe(cmd *cobra.Command, args []string) error {
	if err := logging.Initialize(logLevel); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	defer logging.Sync()

	registry, err := config.LoadRegistry()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	target, err := registry.ResolveTarget(controllerName, host, username)
	if err != nil {
		return err
	}
	if interval <= 0 {
		interval = registry.PollInterval()
	}
	if password == "" {
		password = os.Getenv(PasswordEnvVar)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := econet.NewClient(target.Host, target.Username, password, &http.Client{})
	api, err := econet.Create(ctx, client, memcache.New())
	if err != nil {
		return err
	}

	logging.Info("Controller connected",
		zap.String("host", api.Host()),
		zap.String("uid", api.UID()),
		zap.String("software", api.SoftwareRevision()),
	)

	srv := server.New(&server.Config{Listen: listen, Interval: interval}, api)

	if mqttBroker != "" {
		if mqttQoS < 0 || mqttQoS > 2 {
			return mqtt.ErrInvalidQoS
		}
		mc, err := mqtt.Connect(mqtt.Config{
			Broker:   mqttBroker,
			ClientID: mqttClientID,
			Username: mqttUsername,
			Password: mqttPassword,
			QoS:      byte(mqttQoS),
		}, mqtt.Topics{UID: api.UID()})
		if err != nil {
			return err
		}
		defer func() {
			_ = mc.Close()
		}()

		bridge, err := mqtt.Start(ctx, mc, srv.Poller())
		if err != nil {
			return err
		}
		srv.Poller().AddSink(bridge)
	}

	return srv.Start(ctx)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("econet-server %s\n", version.Full())
	},
}
