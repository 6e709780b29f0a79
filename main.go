package main

import "github.com/courtaudio/oralargs/cmd"

func main() {
	cmd.Execute()
}
