package main

import (
	"os"

	"github.com/timothyakintayo/nyc-elevator-elt/internal/app"
	"github.com/timothyakintayo/nyc-elevator-elt/internal/config"
)

// Runs ingest, export and geo in sequence, aborting on the first failure.
func main() {
	os.Exit(app.Main(config.StageIngest, config.StageExport, config.StageGeo))
}
