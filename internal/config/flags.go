package config

import (
	"flag"
	"io"
)

type flagValues struct {
	configFile string
	values     Config
	set        map[string]bool
	rest       []string
}

// parseFlags reads command-line flags.
//
// Supported flags:
//
//	-c, -config string   JSON config file
//	-driver string       database/sql driver ("pgx" or "sqlite")
//	-d string            database DSN
//	-l string            log level
//	-b string            S3 bucket
//	-g string            S3 region
//	-e string            S3 base endpoint
//	-u string            S3 access key
//	-p string            S3 secret key
//	-prefix string       export key prefix
//
// Only flags present on the command line override defaults and the JSON file.
func parseFlags(args []string) (*flagValues, error) {
	fl := &flagValues{set: map[string]bool{}}

	fs := flag.NewFlagSet("bankclients", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&fl.configFile, "config", "", "path to config file")
	fs.StringVar(&fl.configFile, "c", "", "path to config file (short)")
	fs.StringVar(&fl.values.Driver, "driver", "", "database driver (pgx, sqlite)")
	fs.StringVar(&fl.values.DatabaseDSN, "d", "", "database DSN")
	fs.StringVar(&fl.values.LogLevel, "l", "", "log level")
	fs.StringVar(&fl.values.S3Bucket, "b", "", "S3 bucket")
	fs.StringVar(&fl.values.S3Region, "g", "", "S3 region")
	fs.StringVar(&fl.values.S3BaseEndpoint, "e", "", "S3 base endpoint")
	fs.StringVar(&fl.values.S3AccessKey, "u", "", "S3 access key")
	fs.StringVar(&fl.values.S3SecretKey, "p", "", "S3 secret key")
	fs.StringVar(&fl.values.ExportPrefix, "prefix", "", "export key prefix")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	fs.Visit(func(f *flag.Flag) { fl.set[f.Name] = true })
	fl.rest = fs.Args()

	return fl, nil
}

func (fl *flagValues) apply(c *Config) {
	pick := func(name string, dst *string, v string) {
		if fl.set[name] {
			*dst = v
		}
	}
	pick("driver", &c.Driver, fl.values.Driver)
	pick("d", &c.DatabaseDSN, fl.values.DatabaseDSN)
	pick("l", &c.LogLevel, fl.values.LogLevel)
	pick("b", &c.S3Bucket, fl.values.S3Bucket)
	pick("g", &c.S3Region, fl.values.S3Region)
	pick("e", &c.S3BaseEndpoint, fl.values.S3BaseEndpoint)
	pick("u", &c.S3AccessKey, fl.values.S3AccessKey)
	pick("p", &c.S3SecretKey, fl.values.S3SecretKey)
	pick("prefix", &c.ExportPrefix, fl.values.ExportPrefix)
}
