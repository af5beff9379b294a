package main

import "github.com/frahmantamala/leaveflow/cmd"

func main() {
	cmd.Execute()
}
