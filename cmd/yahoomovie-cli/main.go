package main

import (
	"context"
	"yahoomovie/cmd/yahoomovie-cli/commands"
	"yahoomovie/lib/osutil"
)

func main() {
	ctx, cancel := osutil.SignalContext(context.Background())
	defer cancel()
	commands.ExecuteContext(ctx)
}
