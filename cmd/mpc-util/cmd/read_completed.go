package cmd

import (
	"fmt"

	"github.com/dgraph-io/badger/v2"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	bstorage "github.com/dwallet-labs/dwallet-network-sub004/storage/badger"
)

func init() {
	rootCmd.AddCommand(readCompletedCmd)
}

var readCompletedCmd = &cobra.Command{
	Use:   "read-completed",
	Short: "list the sessions of an epoch recorded as completed",
	Run: func(cmd *cobra.Command, args []string) {
		opts := badger.DefaultOptions(mpcConfig.DataDir).WithReadOnly(true).WithLogger(nil)
		db, err := badger.Open(opts)
		if err != nil {
			log.Fatal().Err(err).Str("datadir", mpcConfig.DataDir).Msg("could not open database")
		}
		defer db.Close()

		completed, err := bstorage.NewMPCSessions(db).CompletedByEpoch(flagEpoch)
		if err != nil {
			log.Fatal().Err(err).Uint64("epoch", flagEpoch).Msg("could not read completed sessions")
		}
		log.Info().Uint64("epoch", flagEpoch).Int("sessions", len(completed)).Msg("completed sessions")
		for _, id := range completed {
			fmt.Println(id)
		}
	},
}
