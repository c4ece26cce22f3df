package main

import "github.com/salapa/vaultd/cmd/vaultd/cmd"

func main() {
	cmd.Execute()
}
