package main

import (
	"flag"
	"log/slog"
	"os"

	"github.com/rtm0/calipso/internal/calipso"
	"github.com/rtm0/calipso/internal/report"
)

var (
	file        = flag.String("file", "", "path to a CALIPSO 5 km layer file in HDF5 format. Further files may be passed as arguments and are appended in order")
	format      = flag.String("format", "csv", "footprint output format: csv, influx or none")
	measurement = flag.String("measurement", "calipso", "measurement name used by the influx format")
)

func main() {
	flag.Parse()
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	var w *report.Writer
	if *format != "none" {
		var err error
		w, err = report.NewWriter(os.Stdout, *format, *measurement)
		if err != nil {
			logger.Error("Could not create a footprint writer", "err", err)
			os.Exit(1)
		}
	}

	r := calipso.NewReader(logger)
	c, err := r.ReadFiles(append([]string{*file}, flag.Args()...)...)
	if err != nil {
		logger.Error("Could not read CALIPSO data", "err", err)
		os.Exit(1)
	}
	logger.Info("CALIPSO summary", c.Summary()...)
	if w == nil || c.IsEmpty() {
		return
	}

	fps, err := report.Footprints(c)
	if err != nil {
		logger.Error("Could not extract footprints", "err", err)
		os.Exit(1)
	}
	if err := w.Write(fps); err != nil {
		logger.Error("Could not write footprints", "err", err)
		os.Exit(1)
	}
}
