package main

import "github.com/theirongolddev/waniala/cmd"

func main() {
	cmd.Execute()
}
