package main

import (
	"github.com/dwallet-labs/dwallet-network-sub004/cmd/mpc-util/cmd"
)

func main() {
	cmd.Execute()
}
