package main

import (
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/erisproto/eris"
	"github.com/erisproto/eris/store/boltstore"
	"github.com/erisproto/eris/store/dirstore"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
)

var (
	secretFlag = &cli.StringFlag{
		Name:  "secret",
		Usage: "convergence secret in hex; empty is the public (zero) secret",
	}
	blockSizeFlag = &cli.IntFlag{
		Name:  "block-size",
		Usage: "block size in bytes; must be 1024 or 32768",
		Value: eris.BlockSize32KiB,
	}
	storeFlag = &cli.StringFlag{
		Name:  "store",
		Usage: "path to the store: a bbolt database file, or a directory with --backend=dir",
		Value: "eris.bolt",
	}
	backendFlag = &cli.StringFlag{
		Name:  "backend",
		Usage: "store backend: \"bolt\" (single file) or \"dir\" (one file per block)",
		Value: "bolt",
	}
	verboseFlag = &cli.BoolFlag{
		Name:    "verbose",
		Aliases: []string{"v"},
		Usage:   "enable debug logging",
	}
)

func main() {
	app := &cli.App{
		Name:  "eris",
		Usage: "put and get content-addressed blocks using the ERIS encoding",
		Flags: []cli.Flag{verboseFlag},
		Before: func(c *cli.Context) error {
			level := zerolog.InfoLevel
			if c.Bool(verboseFlag.Name) {
				level = zerolog.DebugLevel
			}
			log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).Level(level)
			return nil
		},
		Commands: []*cli.Command{
			putCommand,
			getCommand,
			catCommand,
			statCommand,
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal().Err(err).Msg("eris")
	}
}

var putCommand = &cli.Command{
	Name:      "put",
	Usage:     "encode a file (or stdin) and print its read capability URN",
	ArgsUsage: "<file>",
	Flags:     []cli.Flag{secretFlag, blockSizeFlag, storeFlag, backendFlag},
	Action: func(c *cli.Context) error {
		if c.NArg() != 1 {
			return cli.Exit("expected exactly one argument: the file to encode", 1)
		}

		secret, err := parseSecret(c.String(secretFlag.Name))
		if err != nil {
			return err
		}

		blockSize := c.Int(blockSizeFlag.Name)
		if blockSize != eris.BlockSize1KiB && blockSize != eris.BlockSize32KiB {
			return cli.Exit(fmt.Sprintf("invalid --block-size %d: must be %d or %d", blockSize, eris.BlockSize1KiB, eris.BlockSize32KiB), 1)
		}

		store, err := openStoreFromFlags(c)
		if err != nil {
			return fmt.Errorf("opening store: %w", err)
		}
		defer store.Close()

		var r io.Reader = os.Stdin
		path := c.Args().First()
		if path != "-" {
			f, err := os.Open(path)
			if err != nil {
				return fmt.Errorf("opening input file: %w", err)
			}
			defer f.Close()
			r = f
		}

		t0 := time.Now()
		rc, err := eris.EncodeAll(c.Context, store, r, secret, blockSize)
		if err != nil {
			return fmt.Errorf("encoding: %w", err)
		}
		log.Debug().Dur("elapsed", time.Since(t0)).Msg("encoded")

		urn, err := rc.URN()
		if err != nil {
			return fmt.Errorf("formatting capability: %w", err)
		}
		fmt.Println(urn)
		return nil
	},
}

var getCommand = &cli.Command{
	Name:      "get",
	Usage:     "decode a read capability URN and write its content to a file (or stdout)",
	ArgsUsage: "<urn>",
	Flags: []cli.Flag{
		storeFlag,
		backendFlag,
		&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "output file; empty is stdout"},
	},
	Action: func(c *cli.Context) error {
		if c.NArg() != 1 {
			return cli.Exit("expected exactly one argument: the read capability URN", 1)
		}

		rc, err := eris.ParseReadCapabilityURN(c.Args().First())
		if err != nil {
			return fmt.Errorf("parsing URN: %w", err)
		}

		store, err := openStoreFromFlags(c)
		if err != nil {
			return fmt.Errorf("opening store: %w", err)
		}
		defer store.Close()

		var w io.Writer = os.Stdout
		if out := c.String("out"); out != "" {
			f, err := os.OpenFile(out, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
			if err != nil {
				return fmt.Errorf("creating output file: %w", err)
			}
			defer f.Close()
			w = f
		}

		content, err := eris.DecodeRecursive(c.Context, eris.FetchFromStore(store), rc)
		if err != nil {
			return fmt.Errorf("decoding: %w", err)
		}
		if _, err := w.Write(content); err != nil {
			return fmt.Errorf("writing output: %w", err)
		}
		return nil
	},
}

var catCommand = &cli.Command{
	Name:      "cat",
	Usage:     "stream a read capability URN's content straight to stdout via the random-access reader",
	ArgsUsage: "<urn>",
	Flags:     []cli.Flag{storeFlag, backendFlag},
	Action: func(c *cli.Context) error {
		if c.NArg() != 1 {
			return cli.Exit("expected exactly one argument: the read capability URN", 1)
		}

		rc, err := eris.ParseReadCapabilityURN(c.Args().First())
		if err != nil {
			return fmt.Errorf("parsing URN: %w", err)
		}

		store, err := openStoreFromFlags(c)
		if err != nil {
			return fmt.Errorf("opening store: %w", err)
		}
		defer store.Close()

		reader := eris.NewStreamReader(eris.FetchFromStore(store), rc)
		_, err = io.Copy(os.Stdout, &contextReader{ctx: c.Context, r: reader})
		return err
	},
}

var statCommand = &cli.Command{
	Name:      "stat",
	Usage:     "print the block size, level, and decoded length of a read capability URN",
	ArgsUsage: "<urn>",
	Flags:     []cli.Flag{storeFlag, backendFlag},
	Action: func(c *cli.Context) error {
		if c.NArg() != 1 {
			return cli.Exit("expected exactly one argument: the read capability URN", 1)
		}

		rc, err := eris.ParseReadCapabilityURN(c.Args().First())
		if err != nil {
			return fmt.Errorf("parsing URN: %w", err)
		}

		store, err := openStoreFromFlags(c)
		if err != nil {
			return fmt.Errorf("opening store: %w", err)
		}
		defer store.Close()

		reader := eris.NewStreamReader(eris.FetchFromStore(store), rc)
		length, err := reader.Length(c.Context)
		if err != nil {
			return fmt.Errorf("reading length: %w", err)
		}

		fmt.Printf("block-size: %d\n", rc.BlockSize)
		fmt.Printf("level:      %d\n", rc.Level)
		fmt.Printf("length:     %d\n", length)
		return nil
	},
}

// openStore opens the store backend named by backend at path. It's a
// thin, cli-free wrapper around the two store constructors so it can be
// unit tested without constructing a *cli.Context.
func openStore(path, backend string) (eris.Store, error) {
	switch backend {
	case "bolt":
		return boltstore.Open(path)
	case "dir":
		return dirstore.Open(path)
	default:
		return nil, cli.Exit(fmt.Sprintf("unknown --backend %q: must be \"bolt\" or \"dir\"", backend), 1)
	}
}

// openStoreFromFlags reads --store and --backend off c and opens the
// corresponding store.
func openStoreFromFlags(c *cli.Context) (eris.Store, error) {
	return openStore(c.String(storeFlag.Name), c.String(backendFlag.Name))
}

func parseSecret(hexSecret string) (eris.Secret, error) {
	var secret eris.Secret
	if hexSecret == "" {
		return secret, nil
	}

	dec, err := hex.DecodeString(hexSecret)
	if err != nil {
		return secret, fmt.Errorf("invalid --secret: %w", err)
	}
	if len(dec) != eris.ConvergenceSecretSize {
		return secret, fmt.Errorf("invalid --secret: expected %d bytes, got %d", eris.ConvergenceSecretSize, len(dec))
	}
	copy(secret[:], dec)
	return secret, nil
}

// contextReader adapts a context-aware reader to io.Reader for use with
// io.Copy.
type contextReader struct {
	ctx context.Context
	r   interface {
		ReadContext(ctx context.Context, p []byte) (int, error)
	}
}

func (cr *contextReader) Read(p []byte) (int, error) {
	return cr.r.ReadContext(cr.ctx, p)
}
