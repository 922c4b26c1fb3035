package main

import (
	"os"

	"github.com/spf13/viper"
)

func main() {
	// cobra already printed the error
	if newRootCmd(viper.New()).Execute() != nil {
		os.Exit(1)
	}
}
