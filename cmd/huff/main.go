// Command huff compresses and decompresses files with Huffman coding.
//
//	huff [-c] [-o out] [in]   compress in (or stdin) to out (or stdout)
//	huff -d [-o out] [in]     decompress
//	huff -p [in]              print the codebook of in
package main

import (
	"bufio"
	"bytes"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/op/go-logging"

	"github.com/seiflotfy/huffpack"
	"github.com/seiflotfy/huffpack/internal/logger"
)

var log = logging.MustGetLogger("huff")

type mode uint8

const (
	compressMode mode = iota
	decompressMode
	printMode
)

type options struct {
	mode     mode
	in, out  string
	workers  int
	logLevel string
}

func parseArgs(args []string, stderr io.Writer) (options, error) {
	fs := flag.NewFlagSet("huff", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var opts options
	var c, d, p bool
	fs.BoolVar(&c, "c", false, "compress (default)")
	fs.BoolVar(&d, "d", false, "decompress")
	fs.BoolVar(&p, "p", false, "print the codebook instead of compressing")
	fs.StringVar(&opts.out, "o", "", "output file (default stdout)")
	fs.IntVar(&opts.workers, "workers", 0, "worker goroutines (0 = GOMAXPROCS)")
	fs.StringVar(&opts.logLevel, "log-level", "warning", "log level")
	if err := fs.Parse(args); err != nil {
		return opts, err
	}

	switch {
	case c && d, c && p, d && p:
		return opts, fmt.Errorf("-c, -d and -p are mutually exclusive")
	case d:
		opts.mode = decompressMode
	case p:
		opts.mode = printMode
	default:
		opts.mode = compressMode
	}
	switch fs.NArg() {
	case 0:
	case 1:
		opts.in = fs.Arg(0)
	default:
		return opts, fmt.Errorf("expected at most one input file, got %d", fs.NArg())
	}
	return opts, nil
}

func run(opts options, stdin io.Reader, stdout io.Writer) error {
	in := stdin
	if opts.in != "" {
		f, err := os.Open(opts.in)
		if err != nil {
			return err
		}
		defer f.Close()
		in = f
	}
	data, err := io.ReadAll(bufio.NewReader(in))
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}

	// Output is buffered so a failed run never creates or truncates -o.
	var out bytes.Buffer
	if err := process(opts, data, &out); err != nil {
		return err
	}
	if opts.out == "" {
		_, err := out.WriteTo(stdout)
		return err
	}
	return writeFile(opts.out, out.Bytes())
}

func process(opts options, data []byte, w io.Writer) error {
	switch opts.mode {
	case compressMode:
		a, err := huffpack.Compress(data, huffpack.WithWorkers(opts.workers))
		if err != nil {
			return err
		}
		n, err := a.WriteTo(w)
		if err != nil {
			return fmt.Errorf("write archive: %w", err)
		}
		log.Infof("compressed %d bytes to %d bytes (%d symbols)", len(data), n, a.Symbols())
	case decompressMode:
		var a huffpack.Archive
		if err := a.UnmarshalBinary(data); err != nil {
			return fmt.Errorf("read archive: %w", err)
		}
		raw, err := a.Decompress()
		if err != nil {
			return err
		}
		if _, err := w.Write(raw); err != nil {
			return err
		}
		log.Infof("decompressed %d bytes to %d bytes", len(data), len(raw))
	case printMode:
		a, err := huffpack.Compress(data, huffpack.WithWorkers(opts.workers))
		if err != nil {
			return err
		}
		for _, s := range a.Codebook.Symbols() {
			c, _ := a.Codebook.Lookup(s)
			fmt.Fprintf(w, "%3d %q %s\n", s, s, c)
		}
		fmt.Fprintf(w, "bits %d\n", a.Payload.BitLen)
	}
	return nil
}

func writeFile(path string, b []byte) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := f.Write(b); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// usageExitCode is the exit status for a parseArgs error; -h is not a failure.
func usageExitCode(err error) int {
	if errors.Is(err, flag.ErrHelp) {
		return 0
	}
	return 2
}

func main() {
	opts, err := parseArgs(os.Args[1:], os.Stderr)
	if err != nil {
		os.Exit(usageExitCode(err))
	}
	if err := logger.Setup(os.Stderr, opts.logLevel); err != nil {
		fmt.Fprintf(os.Stderr, "huff: %v\n", err)
		os.Exit(2)
	}
	if err := run(opts, os.Stdin, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "huff: %v\n", err)
		os.Exit(1)
	}
}
