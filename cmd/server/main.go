package main

import "flightperf/internal/cli"

func main() {
	cli.Execute()
}
