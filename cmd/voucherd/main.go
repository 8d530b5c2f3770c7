package main

import (
	"github.com/hbkwon/voucherd/internal/cli"
)

func main() {
	cli.Execute()
}
