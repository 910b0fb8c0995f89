package main

import "lunchstats/cmd"

func main() {
	cmd.Execute()
}
