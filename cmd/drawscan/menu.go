package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/zeebo/drawscan/seedsearch"
	"github.com/zeebo/errs"
	"github.com/zeebo/pcg"
	"golang.org/x/term"
)

// menuCmd represents the menu command
var menuCmd = &cobra.Command{
	Use:   "menu",
	Short: "Interactive text menu",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !term.IsTerminal(int(os.Stdin.Fd())) {
			return errs.New("menu needs an interactive terminal, use the subcommands instead")
		}

		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		rng := pcg.New(uint64(time.Now().UnixNano()))
		return runMenu(cmd.Context(), a, os.Stdin, &rng)
	},
}

func init() {
	rootCmd.AddCommand(menuCmd)
}

// prompter reads answers to prompts line by line.
type prompter struct {
	out io.Writer
	sc  *bufio.Scanner
}

func (p *prompter) ask(prompt string) (string, bool) {
	fmt.Fprint(p.out, prompt)
	if !p.sc.Scan() {
		return "", false
	}
	return strings.TrimSpace(p.sc.Text()), true
}

func (p *prompter) askInt(prompt string, def int64) (int64, bool) {
	line, ok := p.ask(prompt)
	if !ok {
		return 0, false
	}
	if line == "" {
		return def, true
	}
	v, err := strconv.ParseInt(line, 10, 64)
	if err != nil {
		fmt.Fprintf(p.out, "invalid number %q, using %d\n", line, def)
		return def, true
	}
	return v, true
}

const menuText = `
drawscan
1) Enter draw (ingest)
2) Scan random seeds
3) Search seeds
4) List machine seeds
5) Exit
`

// runMenu loops over the menu until exit or the input ends. Errors from an
// action are printed and the menu continues.
func runMenu(ctx context.Context, a *app, in io.Reader, rng *pcg.T) error {
	p := &prompter{out: a.out, sc: bufio.NewScanner(in)}

	for {
		fmt.Fprint(a.out, menuText)
		choice, ok := p.ask("Select: ")
		if !ok {
			return p.sc.Err()
		}

		var err error
		switch choice {
		case "1":
			id, _ := p.ask("Machine ID: ")
			line, _ := p.ask("Draw (space separated): ")
			err = a.ingest(id, line)

		case "2":
			id, _ := p.ask("Machine ID: ")
			trials, _ := p.askInt("Random trials (2000): ", 2000)
			err = a.scan(ctx, id, int(trials), 30, rng)

		case "3":
			id, _ := p.ask("Machine ID: ")
			line, _ := p.ask("Seeds (blank for saved): ")
			var seeds []seedsearch.Seed
			for _, field := range strings.Fields(line) {
				seed, perr := seedsearch.ParseSeed(field)
				if perr != nil {
					fmt.Fprintf(a.out, "skipping %q\n", field)
					continue
				}
				seeds = append(seeds, seed)
			}
			duration, _ := p.askInt("Duration seconds (300): ", 300)
			err = a.search(ctx, id, seeds, duration)

		case "4":
			id, _ := p.ask("Machine ID: ")
			err = a.listSeeds(id)

		case "5", "q", "exit":
			return nil

		default:
			fmt.Fprintln(a.out, "Invalid choice.")
		}

		if err != nil {
			fmt.Fprintln(a.out, "error:", err)
		}
	}
}
