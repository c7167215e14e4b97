// Command subsearch is a thin command-line façade over the writer and
// reader packages. It owns no index-format logic of its own; every
// subcommand is a direct call into the core library.
package main

import (
	"bufio"
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v2"

	"github.com/wavenator-labs/subsearch/reader"
	"github.com/wavenator-labs/subsearch/writer"
)

func main() {
	app := &cli.App{
		Name:  "subsearch",
		Usage: "build and query a chunked suffix-array substring index",
		Commands: []*cli.Command{
			buildCommand(),
			addCommand(),
			searchCommand(),
			countEntriesCommand(),
			countOccurrencesCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "subsearch:", err)
		os.Exit(1)
	}
}

func buildCommand() *cli.Command {
	return &cli.Command{
		Name:      "build",
		Usage:     "build an index file from a newline-delimited text file",
		ArgsUsage: "INDEX_FILE INPUT_FILE",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "max-chunk-len",
				Usage: "flush a chunk once it exceeds this many bytes",
				Value: writer.DefaultMaxChunkLen,
			},
		},
		Action: func(c *cli.Context) error {
			if c.Args().Len() != 2 {
				return cli.Exit("expected INDEX_FILE and INPUT_FILE", 1)
			}
			indexPath := c.Args().Get(0)
			inputPath := c.Args().Get(1)

			w, err := writer.New(indexPath, writer.WithMaxChunkLen(c.Int("max-chunk-len")))
			if err != nil {
				return err
			}

			if err := w.AddEntriesFromFileLines(inputPath); err != nil {
				_ = w.Finalize()
				return err
			}

			if err := w.Finalize(); err != nil {
				return err
			}

			info, err := os.Stat(indexPath)
			if err == nil {
				fmt.Printf("wrote %s (%s)\n", indexPath, humanize.Bytes(uint64(info.Size())))
			}
			return nil
		},
	}
}

func addCommand() *cli.Command {
	return &cli.Command{
		Name:      "add",
		Usage:     "add entries read from stdin (one per line) to a fresh index file",
		ArgsUsage: "INDEX_FILE",
		Action: func(c *cli.Context) error {
			if c.Args().Len() != 1 {
				return cli.Exit("expected INDEX_FILE", 1)
			}

			w, err := writer.New(c.Args().Get(0))
			if err != nil {
				return err
			}

			scanner := bufio.NewScanner(os.Stdin)
			for scanner.Scan() {
				line := scanner.Bytes()
				if len(line) == 0 {
					continue
				}
				if err := w.AddEntry(line); err != nil {
					_ = w.Finalize()
					return err
				}
			}
			if err := scanner.Err(); err != nil {
				_ = w.Finalize()
				return err
			}

			return w.Finalize()
		},
	}
}

func searchCommand() *cli.Command {
	return &cli.Command{
		Name:      "search",
		Usage:     "print every entry containing SUBSTRING",
		ArgsUsage: "INDEX_FILE SUBSTRING",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "sequential", Usage: "search chunks on the calling goroutine instead of the worker pool"},
		},
		Action: func(c *cli.Context) error {
			if c.Args().Len() != 2 {
				return cli.Exit("expected INDEX_FILE and SUBSTRING", 1)
			}

			r, err := reader.New(c.Args().Get(0))
			if err != nil {
				return err
			}
			defer r.Close()

			var results []string
			if c.Bool("sequential") {
				results, err = r.SearchSequential(c.Args().Get(1))
			} else {
				results, err = r.SearchParallel(c.Args().Get(1))
			}
			if err != nil {
				return err
			}

			for _, entry := range results {
				fmt.Println(entry)
			}
			return nil
		},
	}
}

func countEntriesCommand() *cli.Command {
	return &cli.Command{
		Name:      "count-entries",
		Usage:     "print the number of distinct entries containing SUBSTRING",
		ArgsUsage: "INDEX_FILE SUBSTRING",
		Action: func(c *cli.Context) error {
			if c.Args().Len() != 2 {
				return cli.Exit("expected INDEX_FILE and SUBSTRING", 1)
			}

			r, err := reader.New(c.Args().Get(0))
			if err != nil {
				return err
			}
			defer r.Close()

			n, err := r.CountEntries(c.Args().Get(1))
			if err != nil {
				return err
			}
			fmt.Println(n)
			return nil
		},
	}
}

func countOccurrencesCommand() *cli.Command {
	return &cli.Command{
		Name:      "count-occurrences",
		Usage:     "print the total number of occurrences of SUBSTRING",
		ArgsUsage: "INDEX_FILE SUBSTRING",
		Action: func(c *cli.Context) error {
			if c.Args().Len() != 2 {
				return cli.Exit("expected INDEX_FILE and SUBSTRING", 1)
			}

			r, err := reader.New(c.Args().Get(0))
			if err != nil {
				return err
			}
			defer r.Close()

			n, err := r.CountOccurrences(c.Args().Get(1))
			if err != nil {
				return err
			}
			fmt.Println(n)
			return nil
		},
	}
}
