package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/onionforge/onionforge/fixture"
	"github.com/onionforge/onionforge/netstatus"
	"github.com/onionforge/onionforge/version"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "generate":
		runGenerate(os.Args[2:])
	case "netstatus":
		runNetstatus(os.Args[2:])
	case "versions":
		runVersions(os.Args[2:])
	default:
		fmt.Printf("Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Usage: onionforge <command> [flags]")
	fmt.Println("\nCommands:")
	fmt.Println("  generate   Build a fixture bundle from a config file")
	fmt.Println("  netstatus  Print a single bridge network-status document")
	fmt.Println("  versions   Sort tor version strings under the consensus ordering")
}

// runGenerate builds the configured fixture bundle and writes it to the
// output directory. The manifest is clearsigned when GPG_PRIVATE_KEY is
// set in the environment.
func runGenerate(args []string) {
	fs := flag.NewFlagSet("generate", flag.ExitOnError)
	confPath := fs.String("config", "onionforge.yaml", "Path to bundle config file")
	outDir := fs.String("out", "", "Output directory (overrides the config's 'out')")
	tarPath := fs.String("tar", "", "Also write the bundle as a tar.gz to this path")
	fs.Parse(args)

	config, err := fixture.LoadConfig(*confPath)
	if err != nil {
		fmt.Printf("Fatal: Could not read or parse config file %s: %v\n", *confPath, err)
		os.Exit(1)
	}

	out := config.Out
	if *outDir != "" {
		out = *outDir
	}
	if out == "" {
		out = "dist"
	}

	gpgPrivateKey := os.Getenv("GPG_PRIVATE_KEY")

	set, err := config.Build(gpgPrivateKey, func(e fmt.Stringer) {
		fmt.Println(e)
	})
	if err != nil {
		fmt.Printf("Fatal: %v\n", err)
		os.Exit(1)
	}

	if err := set.SaveTo(out); err != nil {
		fmt.Printf("Fatal: Could not write bundle to %s: %v\n", out, err)
		os.Exit(1)
	}
	fmt.Println(fixture.EventBundleSaved{Path: out})

	if *tarPath != "" {
		f, err := os.Create(*tarPath)
		if err != nil {
			fmt.Printf("Fatal: Could not create %s: %v\n", *tarPath, err)
			os.Exit(1)
		}
		if _, err := set.WriteTo(f); err != nil {
			f.Close()
			fmt.Printf("Fatal: Could not write %s: %v\n", *tarPath, err)
			os.Exit(1)
		}
		f.Close()
		fmt.Println(fixture.EventBundleSaved{Path: *tarPath})
	}
}

// runNetstatus prints one bridge network-status document to stdout.
func runNetstatus(args []string) {
	fs := flag.NewFlagSet("netstatus", flag.ExitOnError)
	nickname := fs.String("nickname", "Unnamed", "Router nickname")
	ipv4 := fs.String("ipv4", "127.0.0.1", "IPv4 address")
	ipv6 := fs.String("ipv6", "", "Optional IPv6 address")
	orport := fs.Int("orport", 9001, "OR port")
	dirport := fs.Int("dirport", 0, "Directory port")
	flagLine := fs.String("flags", "", "Flag line (defaults to the standard flags)")
	bandwidthLine := fs.String("bandwidth-line", "", "Server descriptor bandwidth line to derive the observed value from")
	bandwidth := fs.Int64("bandwidth", 0, "Observed bandwidth in KB/s (ignored when -bandwidth-line is set)")
	fs.Parse(args)

	bw := *bandwidth
	if *bandwidthLine != "" {
		var err error
		bw, err = netstatus.ParseBandwidthLine(*bandwidthLine)
		if err != nil {
			fmt.Printf("Fatal: %v\n", err)
			os.Exit(1)
		}
	}

	router := netstatus.Router{
		Nickname:         *nickname,
		IdentityDigest:   fixture.SynthesizeDigest(*nickname, "identity"),
		DescriptorDigest: fixture.SynthesizeDigest(*nickname, "descriptor"),
		Published:        time.Now().UTC(),
		IPv4:             *ipv4,
		ORPort:           *orport,
		IPv6:             *ipv6,
		DirPort:          *dirport,
		Flags:            *flagLine,
		Bandwidth:        bw,
	}
	os.Stdout.Write(netstatus.GenerateBridgeNetstatus(router))
}

// runVersions sorts version strings under the ordering of one package
// and prints them oldest first. With no arguments it prints the sample
// server-versions list.
func runVersions(args []string) {
	fs := flag.NewFlagSet("versions", flag.ExitOnError)
	pkg := fs.String("package", "tor", "Package label the versions belong to")
	fs.Parse(args)

	raws := fs.Args()
	if len(raws) == 0 {
		raws = netstatus.ServerVersions
	}

	for _, raw := range raws {
		if v := version.New(raw, *pkg); !v.WellFormed {
			fmt.Printf("Warning: %q doesn't look like a version string\n", raw)
		}
	}

	sorted, err := netstatus.SortVersions(*pkg, raws)
	if err != nil {
		fmt.Printf("Fatal: %v\n", err)
		os.Exit(1)
	}
	for _, raw := range sorted {
		fmt.Println(version.New(raw, *pkg))
	}
}
