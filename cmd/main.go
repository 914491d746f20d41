package main

import (
	"github.com/rigbuilders/settlement-svc/internal/app"
	"github.com/rigbuilders/settlement-svc/internal/config"
)

func main() {
	config.MustInit()
	app.MustNewApp().Run()
}
