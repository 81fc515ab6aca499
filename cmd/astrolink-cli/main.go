// astrolink-cli 是 AstroLink MCS 的命令行客户端
package main

import (
	"os"

	"astrolink-client/internal/cli"
)

func main() {
	os.Exit(cli.New(os.Stdout, os.Stderr).Run(os.Args[1:]...))
}
