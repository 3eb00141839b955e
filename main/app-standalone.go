package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/OguroGen/ogu-watcher/main/utils"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	envFile string
	v       = utils.NewViper()
)

var rootCmd = &cobra.Command{
	Use:   "ogu-watcher [env-file]",
	Short: "Relay live camera frames and talkback audio between cameras and viewers",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		config, err := initConfig(args)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		return StartRelayServer(ctx, config)
	},
}

var healthcheckCmd = &cobra.Command{
	Use:   "healthcheck",
	Short: "Exit 0 when the relay status endpoint answers",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		config, err := initConfig(nil)
		if err != nil {
			return err
		}
		return utils.Healthcheck(config.HealthcheckURL, 3*time.Second)
	},
}

func initConfig(args []string) (utils.Config, error) {
	if envFile == "" && len(args) > 0 {
		envFile = args[0]
	}
	if err := utils.LoadEnvFile(envFile); err != nil {
		return utils.Config{}, err
	}

	config, err := utils.LoadConfig(v)
	if err != nil {
		return utils.Config{}, err
	}

	if !config.Release {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
	zerolog.SetGlobalLevel(config.LogLevel)
	return config, nil
}

func bindFlag(v *viper.Viper, key string, cmd *cobra.Command, name string) {
	if err := v.BindPFlag(key, cmd.PersistentFlags().Lookup(name)); err != nil {
		panic(err)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "env file to load before reading the environment")
	rootCmd.PersistentFlags().String("port", "", "listen port (default 8080, 8443 with TLS)")
	rootCmd.PersistentFlags().String("static-dir", "", "directory with camera.html and viewer.html (default webapp)")
	rootCmd.PersistentFlags().String("log-level", "", "zerolog level (default info)")
	bindFlag(v, "PORT", rootCmd, "port")
	bindFlag(v, "STATIC_DIR", rootCmd, "static-dir")
	bindFlag(v, "LOG_LEVEL", rootCmd, "log-level")

	rootCmd.AddCommand(healthcheckCmd)
	rootCmd.SilenceUsage = true
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Error().Err(err).Msg("exiting")
		os.Exit(1)
	}
}
