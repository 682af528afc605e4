package main

import (
	"context"
	"errors"
	"log"
	"os"

	"github.com/spf13/pflag"

	"github.com/dmitrijs2005/tradeguard/internal/server"
	"github.com/dmitrijs2005/tradeguard/internal/server/config"
)

func main() {
	fs := pflag.NewFlagSet("tradeguard-server", pflag.ContinueOnError)
	config.RegisterFlags(fs)
	if err := fs.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		log.Fatalf("%v", err)
	}

	cfg, err := config.LoadConfig(fs)
	if err != nil {
		log.Fatalf("%v", err)
	}

	app, err := server.NewApp(cfg)
	if err != nil {
		log.Fatalf("%v", err)
	}

	if err := app.Run(context.Background()); err != nil {
		log.Fatalf("%v", err)
	}
}
