package main

import (
	"github.com/ValentinKolb/dRPC/cmd"
)

func main() {
	cmd.Execute()
}
