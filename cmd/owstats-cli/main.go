package main

import (
	"owstats/cmd/owstats-cli/commands"
	"owstats/lib/serviceutil"
)

func main() {
	ctx := serviceutil.SignalContext()
	commands.ExecuteContext(ctx)
}
