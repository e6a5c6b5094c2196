package main

import (
	"os"

	"github.com/SteveKibs/cake-backend-app/cli"
	"github.com/SteveKibs/cake-backend-app/utils"
)

func main() {
	if err := cli.Execute(); err != nil {
		utils.ErrorLogger.Error(err)
		os.Exit(1)
	}
}
