package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/tyemirov/cargo-expand/internal/cli"
	"github.com/tyemirov/cargo-expand/internal/types"
	"github.com/tyemirov/cargo-expand/internal/utils"
)

// main is the entry point for the cargo-expand command.
func main() {
	loggerInstance, loggerInitializationError := utils.NewApplicationLogger()
	if loggerInitializationError != nil {
		panic(fmt.Errorf(utils.LoggerInitializationFailedMessageFormat, loggerInitializationError))
	}
	defer loggerInstance.Sync()

	if applicationExecutionError := cli.Execute(); applicationExecutionError != nil {
		var exitCodeError *types.ExitCodeError
		if errors.As(applicationExecutionError, &exitCodeError) {
			// Diagnostics were already written by the failing stage.
			_ = loggerInstance.Sync()
			os.Exit(exitCodeError.Code)
		}
		loggerInstance.Fatal(utils.ApplicationExecutionFailedMessage + ": " + applicationExecutionError.Error())
	}
}
