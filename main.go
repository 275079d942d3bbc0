package main

import "github.com/esteinig/sketchy/cmd"

func main() {
	cmd.Execute()
}
