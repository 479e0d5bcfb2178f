package main

import "content-pipeline/internal/cli"

func main() {
	cli.Execute()
}
