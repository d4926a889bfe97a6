package main

import (
	"fmt"
	"os"
)

var version = "dev"

func main() {
	a := newApp(os.Stdout, os.Stderr)
	if err := a.Execute(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "Erro:", err)
		os.Exit(1)
	}
}
