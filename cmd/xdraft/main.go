package main

import "github.com/Guilhem-Bonnet/xdraft/internal/cli"

func main() {
	cli.Execute()
}
