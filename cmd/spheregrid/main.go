package main

import "github.com/notargets/spheregrid/cmd/spheregrid/commands"

func main() {
	commands.Execute()
}
