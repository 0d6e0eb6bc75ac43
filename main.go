package main

import (
	"github.com/dyike/AdvisorGo/internal/cli"
)

func main() {
	cli.Run()
}
