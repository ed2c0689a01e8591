package main

import "github.com/profaxno/admin-management/cmd"

func main() {
	cmd.Execute()
}
