package cmd

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"cinema-kiosk/config"
	"cinema-kiosk/service"
	"cinema-kiosk/tui"
)

const appName = "cinema-kiosk"

var (
	appVersion = "dev"
	appCommit  = "none"

	settings = config.New()
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of the kiosk",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), versionString())
	},
}

var rootCmd = &cobra.Command{
	Use:   appName,
	Short: "Cinema ticket kiosk",
	Long: `Pick the number of tickets, a film and your seats on an arced auditorium
chart, then pay, all from the terminal.`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		d, err := newDeps(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer d.Close()

		k := d.newKiosk(service.DefaultCatalog())
		d.log.Info("kiosk started", zap.String("hall", cfg.HallConfig().Name), zap.Int("tickets", cfg.Tickets))

		_, err = tea.NewProgram(tui.New(k, d.catalogClient(), d.log), tea.WithAltScreen(), tea.WithMouseCellMotion()).Run()
		return err
	},
}

func versionString() string {
	s := fmt.Sprintf("%s %s", appName, appVersion)
	if appCommit != "none" && appCommit != "" {
		s += fmt.Sprintf(" (%s)", appCommit)
	}
	return s
}

// loadConfig merges flags, KIOSK_* env and the optional --config file.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	if err := config.BindFlags(settings, cmd.Flags()); err != nil {
		return nil, err
	}
	file, _ := cmd.Flags().GetString("config")
	return config.Load(settings, file)
}

func init() {
	config.RegisterFlags(rootCmd.PersistentFlags())
	rootCmd.AddCommand(versionCmd, chartCmd, simulateCmd, ordersCmd)
}

func Execute(version, commit string) {
	appVersion, appCommit = version, commit
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
