package main

import "github.com/carboneio/sclone/cmd"

func main() {
	cmd.Execute()
}
