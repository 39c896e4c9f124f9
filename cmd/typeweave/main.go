package main

import "github.com/codetrail/typeweave/internal/cli"

func main() {
	cli.Execute()
}
