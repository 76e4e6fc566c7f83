package main

import "github.com/relayforge/subconverter/cmd"

func main() {
	cmd.Execute()
}
