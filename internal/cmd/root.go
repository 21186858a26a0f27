package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	Version   string
	BuildTime string
	cfgFile   string
)

var rootCmd = &cobra.Command{
	Use:   "textgate",
	Short: "OpenAI-compatible API bridge for a native text-generation server",
	Long: `Textgate exposes OpenAI-style /v1/completions and /v1/chat/completions
endpoints in front of an inference server that speaks the native
generate protocol, translating requests, responses and token streams
between the two.`,
	RunE: runServe,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")
	rootCmd.PersistentFlags().String("data-dir", "./data", "data directory")
	rootCmd.PersistentFlags().String("log-dir", "./logs", "log directory")

	rootCmd.Flags().String("host", "0.0.0.0", "server host")
	rootCmd.Flags().Int("port", 8080, "server port")
	rootCmd.Flags().String("mode", "release", "server mode (debug/release/test)")
	rootCmd.Flags().String("upstream", "http://127.0.0.1:3000", "native generate server base URL")

	viper.BindPFlag("storage.data_dir", rootCmd.PersistentFlags().Lookup("data-dir"))
	viper.BindPFlag("storage.logs_dir", rootCmd.PersistentFlags().Lookup("log-dir"))
	viper.BindPFlag("server.host", rootCmd.Flags().Lookup("host"))
	viper.BindPFlag("server.port", rootCmd.Flags().Lookup("port"))
	viper.BindPFlag("server.mode", rootCmd.Flags().Lookup("mode"))
	viper.BindPFlag("upstream.base_url", rootCmd.Flags().Lookup("upstream"))
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath("./data")
		viper.AddConfigPath("$HOME/.textgate")
	}

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Println("Using config file:", viper.ConfigFileUsed())
	}
}
