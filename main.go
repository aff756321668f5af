package main

import "github.com/shuindub/oracle-session/cmd"

func main() {
	cmd.Execute()
}
