package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/pflag"
)

type options struct {
	envFile  string
	code     string
	verifier string
	once     bool
	tags     bool
	logout   bool
}

func parseFlags(args []string) (options, error) {
	var opts options

	flagSet := pflag.NewFlagSet("moodring-poll", pflag.ContinueOnError)
	flagSet.StringVar(&opts.envFile, "env-file", ".env", "dotenv file to load before reading the environment")
	flagSet.StringVar(&opts.code, "code", "", "Spotify authorization code to exchange for a session")
	flagSet.StringVar(&opts.verifier, "verifier", "", "PKCE code verifier that produced the authorization code")
	flagSet.BoolVar(&opts.once, "once", false, "exit after the first published activity")
	flagSet.BoolVar(&opts.tags, "tags", false, "look up the tags of the playing song on every update")
	flagSet.BoolVar(&opts.logout, "logout", false, "clear the stored session and exit")
	flagSet.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: moodring-poll [flags]\n\nPolls Spotify listening activity for the signed-in moodring user.\n\n")
		flagSet.PrintDefaults()
	}

	if err := flagSet.Parse(args); err != nil {
		return opts, err
	}
	if rest := flagSet.Args(); len(rest) > 0 {
		return opts, fmt.Errorf("unexpected argument: %s", rest[0])
	}
	if opts.code != "" && opts.verifier == "" {
		return opts, errors.New("--code requires --verifier")
	}
	return opts, nil
}
