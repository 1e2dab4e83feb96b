package cmd

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/dwallet-labs/dwallet-network-sub004/config"
)

var (
	flagEpoch uint64
	mpcConfig *config.MPCConfig
)

var rootCmd = &cobra.Command{
	Use:   "mpc-util",
	Short: "inspect and replay the MPC session pipeline of a validator",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cmd.Flags())
		if err != nil {
			return err
		}
		mpcConfig = cfg
		zerolog.SetGlobalLevel(cfg.Level())
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
		return nil
	},
}

var RootCmd = rootCmd

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	config.InitializeMPCFlags(rootCmd.PersistentFlags(), config.DefaultMPCConfig())
	rootCmd.PersistentFlags().Uint64Var(&flagEpoch, "epoch", 1, "epoch to operate on")
}
