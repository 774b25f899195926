package main

import "github.com/noahxp/katrain/cmd/katrain-packager/cmd"

func main() {
	cmd.Execute()
}
