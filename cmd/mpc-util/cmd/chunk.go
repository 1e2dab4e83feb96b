package cmd

import (
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/dwallet-labs/dwallet-network-sub004/model/dwallet"
	"github.com/dwallet-labs/dwallet-network-sub004/module/checkpoint"
)

var flagChunkSize int

func init() {
	rootCmd.AddCommand(chunkCmd)

	chunkCmd.Flags().IntVar(&flagChunkSize, "size", 0,
		"chunk size in bytes, defaults to --max-chunk-size")
}

var chunkCmd = &cobra.Command{
	Use:   "chunk <file>",
	Short: "show how a network key output would be split into checkpoint messages",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		output, err := os.ReadFile(args[0])
		if err != nil {
			log.Fatal().Err(err).Msg("could not read network key output")
		}
		size := flagChunkSize
		if size == 0 {
			size = mpcConfig.MaxChunkSize
		}
		if size < 1 {
			log.Fatal().Int("size", size).Msg("chunk size must be positive")
		}

		chunks := checkpoint.Chunks(dwallet.MessageHeader{}, dwallet.NetworkKeyID{}, output, size)
		log.Info().Int("bytes", len(output)).Int("chunks", len(chunks)).Msg("network key output chunked")
		for _, c := range chunks {
			fmt.Printf("chunk %d: %d bytes, last: %v\n", c.ChunkIndex, len(c.PublicOutput), c.IsLast)
		}
	},
}
