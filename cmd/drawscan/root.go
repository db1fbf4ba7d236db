package main

import (
	"log"
	"os"
	"path/filepath"
	"time"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/zeebo/drawscan/store"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "drawscan",
	Short: "Keno lcg seed search.",
	Long: `Record keno draws per machine and search lcg seeds whose jumped ahead
output reproduces them. For example:
  drawscan ingest --machine m1 "3 7 12 19 22 ..."
  drawscan scan --machine m1 --trials 2000
  drawscan search --machine m1
  drawscan web --listen 127.0.0.1:8000`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		log.Println(err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default is $HOME/.drawscan.yaml)")
	flags.String("data-dir", "", "directory holding machines and sessions (default is $HOME/.drawscan)")
	flags.Int64("draws-per-second", 1200, "machine draw rate")
	flags.Float64("threshold", 0.75, "minimum match confidence")
	flags.Int("workers", 0, "seeds searched at once (default GOMAXPROCS, at most 8)")

	_ = viper.BindPFlag("data_dir", flags.Lookup("data-dir"))
	_ = viper.BindPFlag("draws_per_second", flags.Lookup("draws-per-second"))
	_ = viper.BindPFlag("threshold", flags.Lookup("threshold"))
	_ = viper.BindPFlag("workers", flags.Lookup("workers"))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	home, err := homedir.Dir()
	if err != nil {
		log.Println(err)
		os.Exit(1)
	}
	viper.SetDefault("data_dir", filepath.Join(home, ".drawscan"))

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(home)
		viper.SetConfigName(".drawscan")
	}

	viper.SetEnvPrefix("drawscan")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		log.Println("Using config file:", viper.ConfigFileUsed())
	}
}

// newApp opens the configured store.
func newApp(cmd *cobra.Command) (*app, error) {
	dir, err := homedir.Expand(viper.GetString("data_dir"))
	if err != nil {
		return nil, err
	}
	st, err := store.Open(dir)
	if err != nil {
		return nil, err
	}
	return &app{
		store:          st,
		out:            cmd.OutOrStdout(),
		now:            time.Now,
		drawsPerSecond: viper.GetInt64("draws_per_second"),
		threshold:      viper.GetFloat64("threshold"),
		workers:        viper.GetInt("workers"),
	}, nil
}
