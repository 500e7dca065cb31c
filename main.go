package main

import "github.com/jsphweid/midiops/cmd"

func main() {
	cmd.Execute()
}
