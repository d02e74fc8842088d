package main

import (
	"flag"
	"os"
	"strconv"

	"github.com/studiflow/studiflow/appservice"
)

func main() {
	// Optional port override for local runs; everything else comes from
	// STUDIFLOW_ environment variables.
	port := flag.Int("port", 0, "Override STUDIFLOW_HTTP_PORT")
	flag.Parse()

	if *port != 0 {
		_ = os.Setenv("STUDIFLOW_HTTP_PORT", strconv.Itoa(*port))
	}

	if err := appservice.Run(); err != nil {
		os.Exit(1)
	}
}
