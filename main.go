package main

import "github.com/KaramelBytes/fraudeda-cli/cmd"

func main() {
	cmd.Execute()
}
