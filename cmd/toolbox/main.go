package main

import "github.com/fxsml/dispatch/internal/cli"

func main() {
	cli.Execute()
}
