// Command ecelgamal encrypts a message with elliptic curve ElGamal, decrypts
// it again and keeps the key material, ciphertexts and plaintext as files.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"math/big"
	"os"
	"os/signal"
	"strings"

	"github.com/rs/zerolog"
	flag "github.com/spf13/pflag"

	"github.com/smallyu/go-ecc-elgamal/internal/crypto/curves"
	"github.com/smallyu/go-ecc-elgamal/internal/keystore"
	"github.com/smallyu/go-ecc-elgamal/internal/log"
	"github.com/smallyu/go-ecc-elgamal/pkg/ecelgamal"
)

const policyMenu = `Do you want to keep information?
  1. Keep and save in the current path.
  2. Keep and move everything to a new path.
  3. Keep keys and generator here, and copy all files to a new path.
  4. Just keep the keys and generator.
  5. Delete them.
`

type config struct {
	dir       string
	curve     string
	chunk     int
	attempts  int
	workers   int
	logLevel  string
	logOutput string
	message   string
	keep      string
	sub       string
	format    string
}

func parseFlags(args []string, stderr io.Writer) (*config, error) {
	cfg := &config{}
	fs := flag.NewFlagSet("ecelgamal", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVarP(&cfg.dir, "dir", "d", ".", "directory holding the key and ciphertext files")
	fs.StringVarP(&cfg.curve, "curve", "c", curves.DefaultCurve, "curve: "+strings.Join(curves.Names(), ", "))
	fs.IntVar(&cfg.chunk, "chunk", 0, "bytes per encrypted chunk (0 selects the curve default)")
	fs.IntVar(&cfg.attempts, "attempts", curves.DefaultMaxEncodeAttempts, "point encoding attempts per chunk")
	fs.IntVar(&cfg.workers, "workers", 0, "parallel chunk workers (0 selects the number of CPUs)")
	fs.StringVar(&cfg.logLevel, "log-level", log.LogLevelInfo, "log level: debug, info, warn, error")
	fs.StringVar(&cfg.logOutput, "log-output", "stderr", "log output: stdout, stderr or a file path")
	fs.StringVarP(&cfg.message, "message", "m", "", "message to encrypt (prompted for when empty)")
	fs.StringVar(&cfg.keep, "keep", "", "retention policy 1-5 or its name (prompted for when empty)")
	fs.StringVar(&cfg.sub, "sub", "", "subdirectory used by the move and copy policies")
	fs.StringVar(&cfg.format, "format", string(keystore.FormatText), "ciphertext file format: text or cbor")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if err := checkLogFlags(cfg.logLevel, cfg.logOutput); err != nil {
		fmt.Fprintln(stderr, err)
		return nil, err
	}
	return cfg, nil
}

// checkLogFlags rejects the values log.Init would panic on.
func checkLogFlags(level, output string) error {
	if _, err := zerolog.ParseLevel(strings.ToLower(level)); err != nil || level == "" {
		return fmt.Errorf("invalid --log-level %q", level)
	}
	switch output {
	case "stdout", "stderr":
		return nil
	}
	f, err := os.OpenFile(output, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("invalid --log-output: %w", err)
	}
	return f.Close()
}

func (cfg *config) parameters() *ecelgamal.Parameters {
	p := ecelgamal.DefaultParameters(cfg.curve)
	if cfg.chunk > 0 {
		p.MaxChunkLen = cfg.chunk
	}
	if cfg.workers > 0 {
		p.Concurrency = cfg.workers
	}
	p.MaxEncodeAttempts = cfg.attempts
	return p
}

func main() {
	cfg, err := parseFlags(os.Args[1:], os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		os.Exit(2)
	}
	log.Init(cfg.logLevel, cfg.logOutput, nil)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, cfg, os.Stdin, os.Stdout); err != nil {
		log.Fatal(err)
	}
}

func run(ctx context.Context, cfg *config, stdin io.Reader, stdout io.Writer) error {
	format, err := keystore.ParseFormat(cfg.format)
	if err != nil {
		return err
	}
	session, err := ecelgamal.NewSession(cfg.parameters())
	if err != nil {
		return err
	}
	store, err := keystore.New(cfg.dir)
	if err != nil {
		return err
	}
	in := bufio.NewReader(stdin)

	if !store.HasKeys() {
		log.Warnw("key files missing or empty, generating a new key pair", "dir", store.Dir())
		kp, err := session.GenerateKeyPair()
		if err != nil {
			return err
		}
		if err := store.SaveKeyPair(kp); err != nil {
			return err
		}
		fmt.Fprintf(stdout, "Private key generated: %s\n", kp.Private)
		fmt.Fprintf(stdout, "Generator generated: %s\n", kp.Generator)
	}

	// encryption
	pub, err := store.LoadPublicKey()
	if err != nil {
		return err
	}
	if name := pub.Curve().Params().Name; name != session.Curve().Params().Name {
		return fmt.Errorf("public key in %s is on %s, not %s", store.Dir(), name, session.Curve().Params().Name)
	}

	fmt.Fprintf(stdout, "------------ Encryption on %s ------------\n", session.Curve().Params().Name)
	msg := cfg.message
	if msg == "" {
		if msg, err = prompt(in, stdout, "What message do you want to encrypt: "); err != nil {
			return err
		}
	}

	cts, err := session.EncryptMessage(ctx, pub, []byte(msg))
	if err != nil {
		return err
	}
	ks := make([]*big.Int, len(cts))
	for i, ct := range cts {
		ks[i] = ct.K
		log.Debugw("chunk encrypted", "index", i, "k", ct.K.String())
	}
	if err := store.SaveCiphertexts(cts, format); err != nil {
		return err
	}
	if err := store.AppendEphemeral(ks...); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Finished encryption: %d chunks\n", len(cts))

	// decryption, from the files just written
	fmt.Fprintln(stdout, "------------ Decryption ------------")
	priv, err := store.LoadPrivateKey()
	if err != nil {
		return err
	}
	loaded, err := store.LoadCiphertexts(format)
	if err != nil {
		return err
	}
	plain, err := session.DecryptMessage(ctx, priv, loaded)
	if err != nil {
		return err
	}
	if err := store.SavePlaintext(plain); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Your decrypted message is:\n%s\n", plain)

	return retain(store, cfg, in, stdout)
}

func retain(store *keystore.Store, cfg *config, in *bufio.Reader, stdout io.Writer) error {
	choice := cfg.keep
	if choice == "" {
		var err error
		if choice, err = prompt(in, stdout, policyMenu); err != nil {
			return err
		}
	}
	policy, ok := keystore.ParsePolicy(choice)
	if !ok {
		fmt.Fprintln(stdout, "Your selection is not defined, keeping all files")
		return nil
	}

	sub := cfg.sub
	if policy.NeedsSubdir() && sub == "" {
		var err error
		if sub, err = prompt(in, stdout, "What directory name do you want to create: "); err != nil {
			return err
		}
	}
	if err := store.Apply(policy, sub); err != nil {
		return err
	}
	fmt.Fprintln(stdout, "DONE")
	return nil
}

// prompt writes question and reads one line. EOF after a partial line is
// accepted as the answer.
func prompt(in *bufio.Reader, out io.Writer, question string) (string, error) {
	fmt.Fprint(out, question)
	line, err := in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", fmt.Errorf("reading answer: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}
