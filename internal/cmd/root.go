package cmd

import (
	"context"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Iron-Ham/rebuttal/internal/cmd/config"
	"github.com/Iron-Ham/rebuttal/internal/cmd/session"
	appconfig "github.com/Iron-Ham/rebuttal/internal/config"
)

// EnvPrefix prefixes every environment override, e.g. REBUTTAL_API_TOKEN.
const EnvPrefix = "REBUTTAL"

var rootCmd = &cobra.Command{
	Use:   "rebuttal",
	Short: "Structured debates against an AI opponent, from the terminal",
	Long: `Rebuttal runs a debate assignment from the learning platform in your
terminal. Each assignment is three debates; you pick or are given a side,
write statements, and challenge fallacies in the AI opponent's replies.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// ExecuteContext runs the root command with ctx available to every command.
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringP("config", "c", "", "config file (default is $HOME/.config/rebuttal/config.yaml)")
	rootCmd.PersistentFlags().String("env-file", ".env", "dotenv file loaded before reading the environment")
	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	_ = viper.BindPFlag("env_file", rootCmd.PersistentFlags().Lookup("env-file"))

	session.Register(rootCmd)
	config.Register(rootCmd)
	rootCmd.AddCommand(logsCmd)
}

func initConfig() {
	// A missing .env is normal; existing environment variables win.
	if envFile := viper.GetString("env_file"); envFile != "" {
		if _, err := os.Stat(envFile); err == nil {
			_ = godotenv.Load(envFile)
		}
	}

	// Set defaults first so they're available even without a config file
	appconfig.SetDefaults()

	if cfgFile := viper.GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(appconfig.ConfigDir())
		viper.AddConfigPath("$HOME/.config/rebuttal")
		viper.AddConfigPath(".")
	}

	viper.AutomaticEnv()
	viper.SetEnvPrefix(EnvPrefix)
	// e.g., REBUTTAL_DEBATE_POLL_INTERVAL for debate.poll_interval
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Read config file if it exists (ignore error if not found)
	_ = viper.ReadInConfig()
}
