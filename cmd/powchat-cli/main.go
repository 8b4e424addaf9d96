package main

import "github.com/nfrund/powchat/cmd/powchat-cli/cmd"

func main() {
	cmd.Execute()
}
