package main

import "github.com/dkeye/viewing/cmd/client/cmd"

func main() {
	cmd.Execute()
}
