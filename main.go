package main

import "github.com/incontrol-io/incontrol/cmd"

func main() {
	cmd.Execute()
}
