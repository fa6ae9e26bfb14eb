package di

import (
	"flag"
	"fmt"
	"strings"
)

// Flags contains the command line flags shared by the binaries
type Flags struct {
	ConfigFile     string
	Format         string
	Provider       string
	TrustedDomains string
	TokenCache     string
	Verbose        bool
	JSONLog        bool

	// Action selects the diagnostic read in graph-debug
	Action string
}

// ParseFlags parses args for the named command. withAction adds the
// -action flag used by graph-debug.
func ParseFlags(name string, args []string, withAction bool) (*Flags, error) {
	flags := &Flags{}
	fs := flag.NewFlagSet(name, flag.ContinueOnError)

	fs.StringVar(&flags.ConfigFile, "config", "", "Path to config file (default: search the standard locations)")
	fs.StringVar(&flags.Format, "format", "", "Output format (text, json)")
	fs.StringVar(&flags.Provider, "provider", "", "Body inspection provider (none, bedrock, gemini, openai)")
	fs.StringVar(&flags.TrustedDomains, "trusted", "", "Comma-separated list of trusted sender domains")
	fs.StringVar(&flags.TokenCache, "token-cache", "", "Credential store (file, memory, sqlite, mysql, keyring)")
	fs.BoolVar(&flags.Verbose, "verbose", false, "Enable verbose logging and full output")
	fs.BoolVar(&flags.JSONLog, "json-log", false, "Output logs in JSON format")
	if withAction {
		fs.StringVar(&flags.Action, "action", "identity", "Diagnostic to run (identity, folders, claims)")
	}

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if withAction {
		switch flags.Action {
		case "identity", "folders", "claims":
		default:
			err := fmt.Errorf("unknown action %q", flags.Action)
			fmt.Fprintln(fs.Output(), err)
			fs.Usage()
			return nil, err
		}
	}

	return flags, nil
}

// trustedDomains splits the -trusted flag
func (f *Flags) trustedDomains() []string {
	if f.TrustedDomains == "" {
		return nil
	}
	domains := strings.Split(f.TrustedDomains, ",")
	for i, d := range domains {
		domains[i] = strings.TrimSpace(d)
	}
	return domains
}
