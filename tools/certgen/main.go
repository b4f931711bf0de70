// Package main generates a development CA and a server certificate signed by
// it. The proxy serves TLS with server.crt/server.key and the client trusts
// ca.crt via --ca.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/atinyakov/cyberchat/internal/certgen"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("certgen", flag.ContinueOnError)
	fs.SetOutput(out)
	dir := fs.String("dir", "certs", "output directory")
	hosts := fs.String("hosts", "localhost,127.0.0.1", "comma-separated DNS names and IPs for the server certificate")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var names []string
	for _, h := range strings.Split(*hosts, ",") {
		if h = strings.TrimSpace(h); h != "" {
			names = append(names, h)
		}
	}
	if len(names) == 0 {
		return fmt.Errorf("at least one host is required")
	}

	if err := certgen.WriteDevCerts(*dir, names...); err != nil {
		return err
	}
	fmt.Fprintf(out, "certificates for %s written to %s\n", strings.Join(names, ", "), *dir)
	return nil
}
