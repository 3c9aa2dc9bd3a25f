package main

import "github.com/isomerc/nicotine/cmd/nicotine/commands"

func main() {
	commands.Execute()
}
