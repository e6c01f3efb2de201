package main

import (
	"context"
	"time"

	"github.com/webshop/backend/config"
	"github.com/webshop/backend/internal/app"
	"github.com/webshop/backend/pkg/sigctx"
)

const closeTimeout = 5 * time.Second

func main() {
	sigCtx, closeApp := sigctx.NotifyContext()
	defer closeApp()

	cfg := config.Load()
	cfg.Print()

	shop := app.New(sigCtx, cfg)

	shop.Run(closeApp)

	<-sigCtx.Done()
	ctx, cancel := context.WithTimeout(context.Background(), closeTimeout)
	defer cancel()

	shop.Close(ctx)
}
