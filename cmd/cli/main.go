package main

import (
	"cadgrade/pkg/cli"
)

func main() {
	cli.Execute()
}
