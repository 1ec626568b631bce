// Package kgraph implements the kgraph command line tool.
package kgraph

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	root "github.com/kgraph-io/kgraph"
	"github.com/kgraph-io/kgraph/pkg/config"
)

var (
	cfgFile string
	rootCmd = &cobra.Command{
		Use:   "kgraph",
		Short: "kgraph: embedded knowledge graph tool",
		Long: `kgraph manages a persistent knowledge graph of typed entities and
relations. It supports querying, path search, transitive inference,
similarity-based recommendations, analytics, and export to JSON,
GraphML, and parquet.

State lives in a plain data directory of JSON documents, so a graph
can be inspected and versioned with ordinary tools.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			initConfig()
		},
	}
)

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.kgraph.yaml)")
	rootCmd.PersistentFlags().String("data-dir", "", "data directory for graph state")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")

	// Bind flags to viper
	viper.BindPFlag("storage.data_dir", rootCmd.PersistentFlags().Lookup("data-dir"))
	viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".kgraph")
	}

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// openGraph loads configuration and opens the graph for a command run.
func openGraph() (*root.Graph, *config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	g, err := root.Open(cfg, nil)
	if err != nil {
		return nil, nil, err
	}
	return g, cfg, nil
}
