package main

import (
	"os"

	"github.com/hqllang/hql/cmd/hql/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
