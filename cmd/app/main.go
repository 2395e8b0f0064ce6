package main

import (
	"go.uber.org/fx"

	"github.com/patt509/YT-Downloader/internal/app"
)

func main() {
	fx.New(app.CreateApp()).Run()
}
