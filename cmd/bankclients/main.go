package main

import (
	"context"
	"log"
	"os"

	"github.com/dmitrijs2005/bankclients/internal/app"
	"github.com/dmitrijs2005/bankclients/internal/config"
)

func main() {
	cfg, args, err := config.LoadConfig(os.Args[1:])
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	a, err := app.NewApp(cfg, os.Stdout)
	if err != nil {
		log.Fatalf("%v", err)
	}

	err = a.Run(context.Background(), args)
	_ = a.Close()

	if err != nil {
		log.Printf("%v", err)
		os.Exit(1)
	}
}
