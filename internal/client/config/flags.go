package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/socialclone/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
//	-a string   address and port of the backend gRPC server
//	-U string   multipart upload endpoint URL
//	-f string   session cache file
//	-i int      request timeout (in seconds)
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-U", "-f", "-i"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerEndpointAddr, "a", cfg.ServerEndpointAddr, "address and port to access server")
	fs.StringVar(&cfg.UploadEndpointURL, "U", cfg.UploadEndpointURL, "upload endpoint URL")
	fs.StringVar(&cfg.SessionDBPath, "f", cfg.SessionDBPath, "session cache file")
	requestTimeout := fs.Int("i", int(cfg.RequestTimeout.Seconds()), "request timeout (in seconds)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.RequestTimeout = time.Duration(*requestTimeout) * time.Second
}
