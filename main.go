package main

import "github.com/timvw/pane-send/cmd"

func main() {
	cmd.Execute()
}
