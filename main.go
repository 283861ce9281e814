package main

import "github.com/strrl/session-trim/cmd/session-trim/commands"

func main() {
	commands.Execute()
}
