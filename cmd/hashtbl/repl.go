package main

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/makirkman/hash-tables/internal/tablestats"
	"github.com/makirkman/hash-tables/table"
)

// maxLineLen mirrors the original interpreter's fixed-size line
// buffer: only the first maxLineLen-1 characters of a line are kept
// (the buffer also held the terminating NUL); the rest is dropped.
const maxLineLen = 80

// runREPL reads commands from in until 'q' or EOF, writing responses
// to out. Commands: "i N" insert, "l N" lookup, "p" print, "s" stats,
// "h" help, "q" quit; anything else falls through to help after
// reporting the unknown operation.
func runREPL(in io.Reader, out io.Writer, tbl *table.Table) {
	fmt.Fprintln(out, "enter a command (h for help):")

	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		op, key, argc := parseCommand(scanner.Text())
		if argc < 1 {
			continue
		}

		switch op {
		case 'i':
			if argc < 2 {
				fmt.Fprintln(out, "syntax: i number")
				continue
			}
			if tbl.Insert(key) {
				fmt.Fprintf(out, "%d inserted\n", key)
			} else {
				fmt.Fprintf(out, "%d already in table\n", key)
			}

		case 'l':
			if argc < 2 {
				fmt.Fprintln(out, "syntax: l number")
				continue
			}
			if tbl.Lookup(key) {
				fmt.Fprintf(out, "%d found\n", key)
			} else {
				fmt.Fprintf(out, "%d not found\n", key)
			}

		case 'p':
			tbl.Fprint(out)

		case 's':
			printStats(out, tbl.Stats())

		case 'q':
			fmt.Fprintln(out, "exiting")
			return

		case 'h':
			printHelp(out)

		default:
			fmt.Fprintf(out, "unknown operation '%c'\n", op)
			printHelp(out)
		}
	}
}

func printHelp(out io.Writer) {
	fmt.Fprintln(out, "available operations:")
	fmt.Fprintln(out, " i number: insert 'number' into table")
	fmt.Fprintln(out, " l number: lookup is 'number' in table")
	fmt.Fprintln(out, " p: print table")
	fmt.Fprintln(out, " s: print stats")
	fmt.Fprintln(out, " q: quit")
}

func printStats(out io.Writer, snap tablestats.Snapshot) {
	fmt.Fprintf(out, "table kind: %s\n", snap.Kind)
	fmt.Fprintf(out, "keys stored: %d\n", snap.KeyCount)
	fmt.Fprintf(out, "inserts: %d, lookups: %d, growths: %d\n", snap.Inserts, snap.Lookups, snap.Growths)
	fmt.Fprintf(out, "time spent in insert/lookup: %s\n", snap.Elapsed)
}

// parseCommand mimics the original's sscanf("%c %llu", ...): the first
// character is the operation, and the first whitespace-separated token
// after it is parsed as the key. A leading '-' on the key is parsed
// as a signed 64-bit integer and reinterpreted as uint64, reproducing
// the unsigned-wraparound "feature" of the original's "i -1" handling.
// argc follows sscanf's convention: 0 for an empty line, 1 for an
// operation with no usable key, 2 for both.
func parseCommand(line string) (op byte, key uint64, argc int) {
	line = strings.TrimRight(line, "\r\n")
	if len(line) > maxLineLen-1 {
		line = line[:maxLineLen-1]
	}
	if len(line) == 0 {
		return 0, 0, 0
	}

	op = line[0]
	argc = 1

	token := strings.TrimSpace(line[1:])
	if token == "" {
		return op, 0, argc
	}
	fields := strings.Fields(token)

	var k uint64
	var err error
	if strings.HasPrefix(fields[0], "-") {
		var signed int64
		signed, err = strconv.ParseInt(fields[0], 10, 64)
		k = uint64(signed)
	} else {
		k, err = strconv.ParseUint(fields[0], 10, 64)
	}
	if err != nil {
		return op, 0, argc
	}

	return op, k, 2
}
