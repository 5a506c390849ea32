package main

import "github.com/scrobbled/scrobbled/internal/cli"

func main() {
	cli.Execute()
}
