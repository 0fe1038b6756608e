package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

const (
	serverKey    = "server"
	sessionKey   = "session"
	nameKey      = "name"
	userIDKey    = "user_id"
	stunKey      = "stun"
	recordDirKey = "record_dir"
	yesKey       = "yes"
	noColourKey  = "no_colour"
	logLevelKey  = "log_level"
)

var rootCmd = &cobra.Command{
	Use:   "viewing",
	Short: "Join or host a virtual property viewing",
	Long: `viewing connects to a viewing service over its signaling websocket.

Run "viewing host" on the agent's machine to open a session, and
"viewing join" on each viewer's machine to take part in it.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if lvl, err := zerolog.ParseLevel(viper.GetString(logLevelKey)); err == nil {
			zerolog.SetGlobalLevel(lvl)
		}
		if viper.GetString(sessionKey) == "" {
			return fmt.Errorf("--session is required")
		}
		return nil
	},
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.WarnLevel)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.viewing.yaml)")
	rootCmd.PersistentFlags().String("server", "ws://localhost:8080/api/ws/signal", "signaling websocket URL")
	rootCmd.PersistentFlags().StringP("session", "s", "", "viewing session id")
	rootCmd.PersistentFlags().StringP("name", "n", "", "display name")
	rootCmd.PersistentFlags().StringSlice("stun", nil, "STUN server URLs")
	rootCmd.PersistentFlags().String("record-dir", "", "while the viewing is recorded, write the remote media to .ivf/.ogg files in this directory")
	rootCmd.PersistentFlags().BoolP("yes", "y", false, "skip the join confirmation")
	rootCmd.PersistentFlags().Bool("no-colour", false, "disable coloured output")
	rootCmd.PersistentFlags().String("log-level", "warn", "log level")

	viper.BindPFlag(serverKey, rootCmd.PersistentFlags().Lookup("server"))
	viper.BindPFlag(sessionKey, rootCmd.PersistentFlags().Lookup("session"))
	viper.BindPFlag(nameKey, rootCmd.PersistentFlags().Lookup("name"))
	viper.BindPFlag(stunKey, rootCmd.PersistentFlags().Lookup("stun"))
	viper.BindPFlag(recordDirKey, rootCmd.PersistentFlags().Lookup("record-dir"))
	viper.BindPFlag(yesKey, rootCmd.PersistentFlags().Lookup("yes"))
	viper.BindPFlag(noColourKey, rootCmd.PersistentFlags().Lookup("no-colour"))
	viper.BindPFlag(logLevelKey, rootCmd.PersistentFlags().Lookup("log-level"))
}

// initConfig reads .env, the config file and VIEWING_* variables.
func initConfig() {
	_ = godotenv.Load()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)
		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".viewing")
	}

	viper.SetEnvPrefix("VIEWING")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			fmt.Fprintln(os.Stderr, "Error reading config file:", err)
		}
	}
}
