/* Copyright © 2025 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package main

import (
	"bufio"
	"bytes"
	"compress/gzip"
	"context"
	_ "embed"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/mikeb26/uscf-lookup/internal"
	"github.com/mikeb26/uscf-lookup/uschess"
)

//go:embed help.txt
var helpText string

// cmdHandler defines the signature for command handler functions.
type cmdHandler func(ctx context.Context, cfg internal.Config, args []string)

var commands = map[string]cmdHandler{
	"help":  handleHelp,
	"id":    handleID,
	"name":  handleName,
	"parse": handleParse,
	"batch": handleBatch,
}

func main() {
	ctx := context.Background()

	global := flag.NewFlagSet("uscflookup", flag.ExitOnError)
	global.Usage = usage
	configPath := global.String("config", "", "json5 config file")
	if err := global.Parse(os.Args[1:]); err != nil {
		os.Exit(1)
	}
	args := global.Args()
	if len(args) < 1 {
		usage()
		os.Exit(1)
	}

	cfg, err := internal.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}

	cmd := args[0]
	if handler, ok := commands[cmd]; ok {
		handler(ctx, cfg, args[1:])
	} else {
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Printf("%v", helpText)
}

func handleHelp(ctx context.Context, cfg internal.Config, args []string) {
	usage()
}

func newClient(cfg internal.Config) *uschess.Client {
	return uschess.NewClient(uschess.ClientOptions{
		DetailURL:   cfg.DetailURL,
		SearchURL:   cfg.SearchURL,
		MinInterval: cfg.MinIntervalDuration(),
		Timeout:     cfg.RequestTimeoutDuration(),
	})
}

func handleID(ctx context.Context, cfg internal.Config, args []string) {
	fs := flag.NewFlagSet("id", flag.ExitOnError)
	id := fs.String("id", "", "USCF member id (7 or 8 digits)")
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	if !uschess.ValidLookupID(*id) {
		fmt.Fprintln(os.Stderr, "Please provide a valid 7 or 8 digit --id.")
		fs.Usage()
		os.Exit(1)
	}

	player, err := newClient(cfg).LookupByID(ctx, *id)
	if err != nil {
		log.Fatalf("Error looking up %v: %v", *id, err)
	}
	if player == nil {
		fmt.Printf("No player found with id %v.\n", *id)
		os.Exit(2)
	}

	renderPlayers(os.Stdout, []uschess.Player{*player}, time.Now())
}

func handleName(ctx context.Context, cfg internal.Config, args []string) {
	fs := flag.NewFlagSet("name", flag.ExitOnError)
	first := fs.String("first", "", "First name")
	last := fs.String("last", "", "Last name")
	state := fs.String("state", "", "Two letter state/region code filter")
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	q := uschess.NameQuery{First: *first, Last: *last, State: *state}
	if len(q.Candidates()) == 0 {
		fmt.Fprintln(os.Stderr, "Please provide --first and/or --last.")
		fs.Usage()
		os.Exit(1)
	}

	players, err := newClient(cfg).LookupByName(ctx, q)
	if err != nil {
		log.Fatalf("Error searching for %v %v: %v", *first, *last, err)
	}
	if len(players) == 0 {
		fmt.Println("No players found.")
		os.Exit(2)
	}

	renderPlayers(os.Stdout, players, time.Now())
}

func handleParse(ctx context.Context, cfg internal.Config, args []string) {
	fs := flag.NewFlagSet("parse", flag.ExitOnError)
	file := fs.String("file", "", "Saved uschess.org page")
	multi := fs.Bool("multi", false, "Return every listed player, not just the first")
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	if *file == "" {
		fmt.Fprintln(os.Stderr, "Please provide --file.")
		fs.Usage()
		os.Exit(1)
	}

	body, err := readPage(*file)
	if err != nil {
		log.Fatalf("Error reading %v: %v", *file, err)
	}
	mode := uschess.SingleRecord
	if *multi {
		mode = uschess.MultiRecord
	}

	fmt.Printf("Shape: %v\n", uschess.DetectShape(body))
	players, err := uschess.Extract(body, mode)
	if err != nil {
		log.Fatalf("Error extracting %v: %v", *file, err)
	}
	if len(players) == 0 {
		fmt.Println("No players found.")
		return
	}

	renderPlayers(os.Stdout, players, time.Now())
}

var gzipMagic = []byte{0x1f, 0x8b}

// readPage returns the contents of a saved page, decompressing it when it is
// gzipped the way the archive stores bodies.
func readPage(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	br := bufio.NewReader(f)
	var rdr io.Reader = br
	magic, _ := br.Peek(len(gzipMagic))
	if bytes.Equal(magic, gzipMagic) || strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(br)
		if err != nil {
			return "", fmt.Errorf("opening gzip stream: %w", err)
		}
		defer gz.Close()
		rdr = gz
	}

	data, err := io.ReadAll(rdr)
	if err != nil {
		return "", err
	}

	return string(data), nil
}

// readIDs returns the member ids listed in r, one per line. Blank lines and
// lines starting with '#' are ignored.
func readIDs(r io.Reader) ([]string, error) {
	var ids []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		ids = append(ids, line)
	}

	return ids, scanner.Err()
}

// handleBatch looks up a roster of members one after another; the client's
// throttle paces the requests.
func handleBatch(ctx context.Context, cfg internal.Config, args []string) {
	fs := flag.NewFlagSet("batch", flag.ExitOnError)
	file := fs.String("file", "", "File of member ids, one per line")
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	if *file == "" {
		fmt.Fprintln(os.Stderr, "Please provide --file.")
		fs.Usage()
		os.Exit(1)
	}

	f, err := os.Open(*file)
	if err != nil {
		log.Fatalf("Error opening %v: %v", *file, err)
	}
	ids, err := readIDs(f)
	f.Close()
	if err != nil {
		log.Fatalf("Error reading %v: %v", *file, err)
	}

	client := newClient(cfg)
	var players []uschess.Player
	for _, id := range ids {
		player, err := client.LookupByID(ctx, id)
		if err != nil {
			// best effort
			fmt.Fprintf(os.Stderr, "skipping %q: %v\n", id, err)
			continue
		}
		if player == nil {
			fmt.Fprintf(os.Stderr, "no player found with id %v\n", id)
			continue
		}
		players = append(players, *player)
	}

	renderPlayers(os.Stdout, players, time.Now())
}

func optional[T any](v *T, format func(T) string) string {
	if v == nil {
		return "-"
	}
	return format(*v)
}

func renderPlayers(w io.Writer, players []uschess.Player, now time.Time) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"USCF ID", "Name", "Regular", "Quick", "State",
		"Expires"})
	for _, p := range players {
		expires := optional(p.ExpirationDate, func(s string) string { return s })
		if p.IsExpired(now) {
			expires += " (expired)"
		}
		t.AppendRow(table.Row{
			p.ID,
			p.Name,
			optional(p.RegRating, strconv.Itoa),
			optional(p.QuickRating, strconv.Itoa),
			optional(p.State, func(s string) string { return s }),
			expires,
		})
	}
	t.SetStyle(table.StyleRounded)
	t.Render()
}
