package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Iron-Ham/singleton/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "singleton",
	Short: "Single-instance coordination for desktop applications",
	Long: `Singleton makes sure only one instance of an application runs per user.
The first instance becomes the leader. Every later launch forwards its
command-line arguments to the leader over a local message channel and exits.`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(loadSettings)

	rootCmd.PersistentFlags().StringP("config", "c", "",
		"config file (default searches "+config.ConfigFile()+")")
	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
}

// loadSettings populates the global viper before any command runs. A
// missing config file is not an error; defaults and SINGLETON_* variables
// still apply.
func loadSettings() {
	v := viper.GetViper()
	config.SetDefaultsOn(v)

	if explicit := v.GetString("config"); explicit != "" {
		v.SetConfigFile(explicit)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		for _, dir := range config.SearchPaths() {
			v.AddConfigPath(dir)
		}
	}

	config.BindEnv(v)
	_ = v.ReadInConfig()
}
