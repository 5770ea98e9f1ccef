package main

import (
	"os"

	"github.com/sysu-ecnc-dev/shift-assigner/backend/internal/solvecmd"
)

func main() {
	os.Exit(solvecmd.Execute(os.Args[1:], os.Stdout, os.Stderr))
}
