package main

import (
	"context"
	"log"

	"pharmaclic/internal/cli"
)

func main() {
	if err := cli.NewRootCmd(&cli.Deps{}).ExecuteContext(context.Background()); err != nil {
		log.Fatal(err)
	}
}
