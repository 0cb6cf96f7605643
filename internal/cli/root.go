package cli

import (
	"errors"
	"os"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"gitlab-devtools/internal/app"
)

// version is set at build time via ldflags.
var version = "dev"

const envPrefix = "DEVTOOL"

// newAppService builds the application service; tests swap it for one with
// fake ports.
var newAppService = app.NewService

type RootConfig struct {
	ConfigFile string
	LogLevel   string
}

func Execute() {
	root := newRootCommand()
	if err := root.Execute(); err != nil {
		os.Exit(exitCodeForError(err))
	}
}

func newRootCommand() *cobra.Command {
	cfg := RootConfig{}
	cmd := &cobra.Command{
		Use:     "devtool",
		Short:   "Release automation and content management for hosted projects",
		Version: version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := initConfig(cfg.ConfigFile); err != nil {
				return err
			}
			setupLogging(viper.GetString("log_level"))
			return nil
		},
	}
	cmd.PersistentFlags().StringVar(&cfg.ConfigFile, "config", "", "Config file path")
	cmd.PersistentFlags().StringVar(&cfg.LogLevel, "log-level", "info", "Log level")
	_ = viper.BindPFlag("log_level", cmd.PersistentFlags().Lookup("log-level"))

	cmd.AddCommand(newReleaseCommand())
	cmd.AddCommand(newUpdatePinsCommand())
	cmd.AddCommand(newPipelineCommand())
	cmd.AddCommand(newDavCommand())
	return cmd
}

func initConfig(configFile string) error {
	viper.SetEnvPrefix(envPrefix)
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if configFile != "" {
		viper.SetConfigFile(configFile)
		if err := viper.ReadInConfig(); err != nil {
			return errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg("failed to read config file").
				WithCause(err)
		}
		return nil
	}

	viper.SetConfigName("devtool")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("$HOME/.config/devtool")
	if err := viper.ReadInConfig(); err != nil {
		return nil
	}
	return nil
}

func setupLogging(level string) {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout})
	switch level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}

func exitCodeForError(err error) int {
	code := errbuilder.CodeOf(err)
	message := errorMessage(err)
	switch code {
	case errbuilder.CodeInvalidArgument, errbuilder.CodeAlreadyExists:
		return 2
	case errbuilder.CodeFailedPrecondition:
		if strings.HasPrefix(message, "incompatible pin") {
			return 3
		}
		return 4
	case errbuilder.CodePermissionDenied:
		return 3
	case errbuilder.CodeNotFound, errbuilder.CodeDeadlineExceeded:
		return 4
	case errbuilder.CodeInternal:
		return 5
	default:
		return 1
	}
}

func errorMessage(err error) string {
	var builder *errbuilder.ErrBuilder
	if errors.As(err, &builder) && strings.TrimSpace(builder.Msg) != "" {
		return builder.Msg
	}
	return err.Error()
}

// remoteConfig pulls the hosting-service connection parameters from the
// resolved configuration.
func remoteConfig() app.RemoteConfig {
	return app.RemoteConfig{
		Server:       viper.GetString("gitlab.url"),
		Token:        viper.GetString("gitlab.token"),
		TimeoutSec:   viper.GetInt("gitlab.timeout"),
		Retries:      viper.GetInt("gitlab.retries"),
		RetryDelayMs: viper.GetInt("gitlab.retry_delay_ms"),
	}
}

func storageConfig(private bool) app.StorageConfig {
	return app.StorageConfig{
		Server:     viper.GetString("webdav.server"),
		Root:       app.StorageRootFor(private),
		Username:   viper.GetString("webdav.username"),
		Password:   viper.GetString("webdav.password"),
		TimeoutSec: viper.GetInt("webdav.timeout"),
	}
}
