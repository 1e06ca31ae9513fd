package main

import "github.com/circleous/cistatus/cmd"

func main() {
	cmd.Execute()
}
