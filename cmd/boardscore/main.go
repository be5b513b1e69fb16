package main

import (
	"github.com/boardscore/boardscore/internal/cli"
)

func main() {
	cli.Execute()
}
