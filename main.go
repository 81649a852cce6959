package main

import (
	"context"
	"flag"
	"os"

	"campus-soporte/config"
	"campus-soporte/core/appbootstrap"
	"campus-soporte/core/utils"
)

func main() {
	configPath := flag.String("config", config.DefaultConfigPath, "path to the YAML config file")
	flag.Parse()

	logger := utils.NewLogger()
	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Errorf("load config: %v", err)
		os.Exit(1)
	}

	ctx := context.Background()
	app, err := appbootstrap.Compose(ctx, cfg, logger)
	if err != nil {
		logger.Errorf("compose: %v", err)
		os.Exit(1)
	}
	defer app.Close()

	if err := app.Run(ctx); err != nil {
		logger.Errorf("run: %v", err)
		os.Exit(1)
	}
}
