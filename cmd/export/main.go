package main

import (
	"os"

	"github.com/timothyakintayo/nyc-elevator-elt/internal/app"
	"github.com/timothyakintayo/nyc-elevator-elt/internal/config"
)

func main() {
	os.Exit(app.Main(config.StageExport))
}
