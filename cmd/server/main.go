package main

import (
	"os"

	_ "github.com/aashari/go-generative-gateway/docs"
)

// @title           Generative Gateway
// @version         2.2.0
// @description     A multi-provider AI gateway. Resolves the requested model to a supported provider, normalizes attachments and conversation history, dispatches to an orchestration webhook and returns one uniform response envelope. Long-running image and video jobs are tracked by a status poller.
// @termsOfService  https://github.com/aashari/go-generative-gateway/blob/main/LICENSE

// @contact.name   API Support
// @contact.url    https://github.com/aashari/go-generative-gateway

// @license.name  MIT
// @license.url   https://opensource.org/licenses/MIT

// @host      localhost:8082
// @BasePath  /

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
