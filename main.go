package main

import "github.com/classweave/classweave/cmd"

func main() {
	cmd.Execute()
}
