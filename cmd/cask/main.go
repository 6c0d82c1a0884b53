// Command cask is a content-addressed, deduplicating file archiver.
//
//	cask --archive backup.db add src/ notes.txt
//	cask --archive backup.db list
//	cask --archive backup.db extract src
package main

import (
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	flag "github.com/spf13/pflag"

	"github.com/cask-archive/cask/archive"
	"github.com/cask-archive/cask/store"
)

const usage = `cask - content-addressed deduplicating file archiver

Usage:
  cask [flags] add <paths...>      archive files and directories
  cask [flags] list                print every archived name
  cask [flags] extract <paths...>  reconstruct files matching each path prefix

Flags:
`

func main() {
	// All error paths funnel through run's return value so deferred
	// cleanup (closing the archive, releasing the writer lock) runs
	// before the process exits.
	os.Exit(run(os.Args[1:]))
}

func run(argv []string) int {
	flags := flag.NewFlagSet("cask", flag.ContinueOnError)
	archivePath := flags.StringP("archive", "a", "cask.db", "path of the archive database")
	codecName := flags.String("compression", "zstd", "codec for a newly created archive (zstd or lz4)")
	verbosity := flags.CountP("verbose", "v", "increase log verbosity (repeatable)")
	flags.Usage = func() {
		fmt.Fprint(os.Stderr, usage)
		fmt.Fprint(os.Stderr, flags.FlagUsages())
	}

	if err := flags.Parse(argv); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return fail(err)
	}

	switch *verbosity {
	case 0:
		log.SetLevel(log.WarnLevel)
	case 1:
		log.SetLevel(log.InfoLevel)
	default:
		log.SetLevel(log.DebugLevel)
	}

	args := flags.Args()
	if len(args) == 0 {
		flags.Usage()
		return 2
	}

	codec, err := store.ParseCodec(*codecName)
	if err != nil {
		return fail(err)
	}

	a, err := archive.Open(*archivePath, archive.Options{Codec: codec})
	if err != nil {
		return fail(err)
	}
	defer a.Close()

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "add":
		err = runAdd(a, rest)
	case "list":
		err = runList(a)
	case "extract":
		err = runExtract(a, rest)
	default:
		fmt.Fprintf(os.Stderr, "cask: unknown command %q\n\n", cmd)
		flags.Usage()
		return 2
	}
	if err != nil {
		return fail(err)
	}
	return 0
}

func fail(err error) int {
	fmt.Fprintf(os.Stderr, "cask: %v\n", err)
	return 1
}

// runAdd archives every file under the given paths in one transaction:
// either the whole batch commits or none of it does.
func runAdd(a *archive.Archive, paths []string) error {
	if len(paths) == 0 {
		return fmt.Errorf("add: no paths given")
	}
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("add: %w", err)
	}
	return a.Batch(func(tx store.Tx) error {
		names, err := a.AddPaths(tx, cwd, paths)
		if err != nil {
			return err
		}
		for _, name := range names {
			log.WithField("name", name).Info("archived")
		}
		count, err := tx.ChunkCount()
		if err != nil {
			return err
		}
		log.WithFields(log.Fields{"files": len(names), "chunks": count}).Debug("batch complete")
		return nil
	})
}

func runList(a *archive.Archive) error {
	return a.View(func(tx store.Tx) error {
		names, err := a.List(tx, "")
		if err != nil {
			return err
		}
		for _, name := range names {
			fmt.Println(name)
		}
		return nil
	})
}

// runExtract reconstructs all records matching each requested prefix
// under the working directory. Extraction only reads the archive, so
// the whole invocation runs in one read transaction.
func runExtract(a *archive.Archive, paths []string) error {
	if len(paths) == 0 {
		return fmt.Errorf("extract: no paths given")
	}
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("extract: %w", err)
	}
	return a.View(func(tx store.Tx) error {
		for _, p := range paths {
			written, err := a.Extract(tx, p, cwd)
			for _, dest := range written {
				log.WithField("path", dest).Info("extracted")
			}
			if err != nil {
				return err
			}
		}
		return nil
	})
}
