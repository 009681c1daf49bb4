package main

import "github.com/mvp-joe/cxxscope/internal/cli"

func main() {
	cli.Execute()
}
