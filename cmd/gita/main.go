package main

import "gita/internal/cli"

func main() {
	cli.Execute()
}
