package main

import "github.com/dotcommander/moyenne/cmd"

func main() {
	cmd.Execute()
}
