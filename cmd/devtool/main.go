package main

import "gitlab-devtools/internal/cli"

func main() {
	cli.Execute()
}
