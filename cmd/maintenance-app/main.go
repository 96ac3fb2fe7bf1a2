package main

import "github.com/u5732555133-stack/maintenance-app/internal/cli"

func main() {
	cli.Execute()
}
