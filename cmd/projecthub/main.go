package main

import "github.com/example/projecthub/cmd"

func main() {
	cmd.Execute()
}
