// Command sk is a CLI client for the StoreKeeper service.
package main

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	grpcinsecure "google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"

	"github.com/and161185/storekeeper/internal/wire"
)

// ---- config/token store ----

type tokenFile struct {
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
	Username    string    `json:"username,omitempty"`
	Role        string    `json:"role,omitempty"`
}

func cfgDir() string {
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return filepath.Join(v, "storekeeper")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "storekeeper")
}

func tokenPath() string { return filepath.Join(cfgDir(), "token.json") }

func saveToken(tf tokenFile) error {
	if err := os.MkdirAll(cfgDir(), 0o700); err != nil {
		return err
	}
	f, err := os.OpenFile(tokenPath(), os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(tf)
}

func loadToken() (string, error) {
	b, err := os.ReadFile(tokenPath())
	if err != nil {
		return "", err
	}
	var tf tokenFile
	if err := json.Unmarshal(b, &tf); err != nil {
		return "", err
	}
	if tf.AccessToken == "" || time.Now().After(tf.ExpiresAt) {
		return "", errors.New("no valid token (login required)")
	}
	return tf.AccessToken, nil
}

func removeToken() error {
	err := os.Remove(tokenPath())
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// ---- grpc dial ----

type bearerCreds struct {
	token     string
	plaintext bool
}

func (b bearerCreds) GetRequestMetadata(context.Context, ...string) (map[string]string, error) {
	return map[string]string{"authorization": "Bearer " + b.token}, nil
}
func (b bearerCreds) RequireTransportSecurity() bool { return !b.plaintext }

func loadTLS(caPath string, insecure bool) (credentials.TransportCredentials, error) {
	if insecure {
		return credentials.NewTLS(&tls.Config{InsecureSkipVerify: true}), nil
	}
	if caPath == "" {
		return credentials.NewClientTLSFromCert(nil, ""), nil
	}
	pem, err := os.ReadFile(caPath)
	if err != nil {
		return nil, err
	}
	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(pem) {
		return nil, errors.New("bad CA cert")
	}
	return credentials.NewTLS(&tls.Config{RootCAs: pool}), nil
}

// conn holds the global connection flags.
type conn struct {
	addr      string
	caPath    string
	insecure  bool
	plaintext bool
}

func (c conn) dial(bearer string) (*grpc.ClientConn, *wire.Client, error) {
	var creds credentials.TransportCredentials
	if c.plaintext {
		creds = grpcinsecure.NewCredentials()
	} else {
		var err error
		creds, err = loadTLS(c.caPath, c.insecure)
		if err != nil {
			return nil, nil, err
		}
	}
	opts := []grpc.DialOption{grpc.WithTransportCredentials(creds)}
	if bearer != "" {
		opts = append(opts, grpc.WithPerRPCCredentials(bearerCreds{token: bearer, plaintext: c.plaintext}))
	}
	cc, err := grpc.NewClient(c.addr, opts...)
	if err != nil {
		return nil, nil, err
	}
	return cc, wire.NewClient(cc), nil
}

// authed dials with the saved token.
func (c conn) authed() (*grpc.ClientConn, *wire.Client, error) {
	token, err := loadToken()
	if err != nil {
		return nil, nil, err
	}
	return c.dial(token)
}

// ---- utils ----

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

func usage() {
	fmt.Fprintf(os.Stderr, `sk CLI
Usage:
  sk -addr HOST:PORT [-cacert file | -insecure | -plaintext] <cmd> [args]

Commands:
  version
  login          -u <username> -p <password>             (saves token)
  logout
  verify-request -u <username>                          (mails a code)
  verify         -u <username> -code <code>
  settings       [-store-name .. -theme .. -language .. -currency .. -timezone .. -owner-email ..]
  products
  product-add    -name <name> -buy <price> -sell <price> [-sku .. -unit .. -stock <qty>]
  product-edit   -id <id> [-name .. -sku .. -unit .. -buy .. -sell ..]
  product-rm     -id <id>
  stock-in       -id <id> -qty <qty> [-buy <price>] [-notes ..]
  stock-out      -id <id> -qty <qty> [-sell <price>] [-notes ..]
  stock-log      [-id <id>]
  sell           -id <id> -qty <qty>
  sales          [-view all|date|week|month|year] [-date YYYY-MM-DD]
  summary        [-view all|date|week|month|year] [-date YYYY-MM-DD]
  dashboard
  users                                                 (owner)
  user-add       -u <username> -p <password> [-email ..] (owner)
  user-edit      -id <id> [-u .. -p .. -email ..]       (owner)
  user-rm        -id <id>                               (owner)
  unlock         -u <username>                          (owner)
`)
	os.Exit(2)
}

// ---- main ----

var (
	version   = "dev"
	buildDate = "unknown"
)

// main dispatches subcommands and configures TLS/auth for RPC calls.
func main() {
	// global flags
	addr := flag.String("addr", "localhost:8443", "server addr")
	caPath := flag.String("cacert", "", "CA cert (PEM)")
	insecure := flag.Bool("insecure", false, "skip cert verify (dev)")
	plaintext := flag.Bool("plaintext", false, "no TLS at all (dev server without certificates)")
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() < 1 {
		usage()
	}
	cmd, args := flag.Arg(0), flag.Args()[1:]
	c := conn{addr: *addr, caPath: *caPath, insecure: *insecure, plaintext: *plaintext}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	run, ok := commands[cmd]
	if !ok {
		if cmd == "version" {
			fmt.Printf("sk %s (%s)\n", version, buildDate)
			return
		}
		usage()
	}
	if err := run(ctx, c, args); err != nil {
		fail(err)
	}
}

// ---- helpers ----

// describe renders an RPC error with its reason and, for locks, the wait time.
func describe(err error) string {
	s, ok := status.FromError(err)
	if !ok {
		return err.Error()
	}
	out := fmt.Sprintf("rpc error: code=%s msg=%s", s.Code(), s.Message())
	for _, d := range s.Details() {
		info, ok := d.(*errdetails.ErrorInfo)
		if !ok {
			continue
		}
		out += " reason=" + info.GetReason()
		if secs := info.GetMetadata()[wire.MetaRemainingSeconds]; secs != "" {
			out += " retry_in=" + secs + "s"
		}
		switch info.GetReason() {
		case wire.ReasonVerificationRequired:
			out += "\nhint: run `sk verify-request -u <username>` and then `sk verify`"
		case wire.ReasonUnauthenticated:
			out += "\nhint: run `sk login`"
		}
	}
	return out
}

func fail(err error) {
	fmt.Fprintln(os.Stderr, describe(err))
	os.Exit(1)
}
