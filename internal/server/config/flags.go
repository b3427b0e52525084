package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/osmnotes/internal/flagx"
)

var serverFlags = []string{"-d", "-s", "-t", "-ns", "-db", "-k", "-kms", "-w", "-u", "-p", "-b", "-g", "-e"}

// parseFlags overlays Config with command-line flags:
//
//	-d   string  PostgreSQL DSN
//	-s   string  JWT HMAC secret
//	-t   int     token validity, minutes
//	-ns  string  accepted namespace
//	-db  string  accepted database
//	-k   string  hex AES-256 master key
//	-kms string  AWS KMS key id; enables KMS key unwrapping
//	-w   string  base64 KMS-wrapped data key
//	-u   string  S3 access key
//	-p   string  S3 secret key
//	-b   string  S3 bucket
//	-g   string  S3 region
//	-e   string  S3 base endpoint
//
// Flags not in the list are left for other components.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], serverFlags)

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")
	tokenValidity := fs.Int("t", int(config.TokenValidityDuration.Minutes()), "token validity (in minutes)")

	fs.StringVar(&config.Namespace, "ns", config.Namespace, "namespace")
	fs.StringVar(&config.Database, "db", config.Database, "database")

	fs.StringVar(&config.MasterKey, "k", config.MasterKey, "hex encoded master key")
	fs.StringVar(&config.KMSKeyID, "kms", config.KMSKeyID, "AWS KMS key id")
	fs.StringVar(&config.WrappedDataKey, "w", config.WrappedDataKey, "base64 wrapped data key")

	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 root user")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 root password")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.TokenValidityDuration = time.Duration(*tokenValidity) * time.Minute
}
