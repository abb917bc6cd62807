package main

import "github.com/renvik/recap/cmd"

func main() {
	cmd.Execute()
}
