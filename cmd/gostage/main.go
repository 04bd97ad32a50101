package main

import "github.com/dbsmedya/gostage/cmd/gostage/cmd"

func main() {
	cmd.Execute()
}
