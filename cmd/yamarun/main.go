// Command yamarun is a small demo CLI over a Domain (spec.md §5): it installs
// parcel files, resolves imports, and loads linked types, printing results
// with the teacher's color conventions. Grounded on cmd/ailang/main.go
// (flag-driven subcommand dispatch, color.New(...).SprintFunc() globals) and
// internal/repl/repl.go (the peterh/liner prompt loop) for "inspect".
package main

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/peterh/liner"

	"github.com/tiriscoded/yama/internal/yama/asm"
	"github.com/tiriscoded/yama/internal/yama/domain"
	"github.com/tiriscoded/yama/internal/yama/model"
	"github.com/tiriscoded/yama/internal/yama/parcel"
	"github.com/tiriscoded/yama/internal/yama/parcelfile"
	"github.com/tiriscoded/yama/internal/yama/signal"
)

var (
	green  = color.New(color.FgGreen).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	cyan   = color.New(color.FgCyan).SprintFunc()
	bold   = color.New(color.Bold).SprintFunc()
)

func main() {
	if len(os.Args) < 2 {
		printHelp()
		return
	}

	switch os.Args[1] {
	case "install":
		cmdInstall(os.Args[2:])
	case "load":
		cmdLoad(os.Args[2:])
	case "inspect":
		cmdInspect(os.Args[2:])
	case "--help", "-h", "help":
		printHelp()
	default:
		fmt.Fprintf(os.Stderr, "%s: unknown command %q\n", red("Error"), os.Args[1])
		printHelp()
		os.Exit(1)
	}
}

func printHelp() {
	fmt.Println(bold("yamarun"), "- demo driver for a Yama domain")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Printf("  %s <parcel.yaml>...           install one or more parcel files\n", cyan("yamarun install"))
	fmt.Printf("  %s <import-path> <parcel.yaml>...   install then resolve an import path\n", cyan("yamarun load"))
	fmt.Printf("  %s <parcel.yaml>...           install then enter an interactive session\n", cyan("yamarun inspect"))
}

// newDomain builds a domain with the asm Compiler attached and every named
// parcel file installed, each under its own Self name, with every dep-name
// mapped to the install-name of the same string (DESIGN.md's CLI section:
// demo parcel files name their dependencies' install-names directly).
func newDomain(sink signal.Sink, paths []string) (*domain.Domain, error) {
	d := domain.NewDefault(domain.WithCompiler(asm.New()), domain.WithSink(sink))
	if len(paths) == 0 {
		return d, nil
	}

	var batch parcel.Batch
	for _, path := range paths {
		p, err := parcelfile.Load(path)
		if err != nil {
			return nil, err
		}
		md := p.Metadata()
		batch.Entries = append(batch.Entries, parcel.Entry{InstallName: md.SelfName, Parcel: p})
		for _, dep := range md.DepNames {
			batch.Mappings = append(batch.Mappings, parcel.DepMapping{
				InstallerName: md.SelfName,
				DepName:       dep,
				Target:        dep,
			})
		}
	}
	if err := d.Install(batch); err != nil {
		return nil, err
	}
	return d, nil
}

func cmdInstall(args []string) {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, red("Error")+": install requires at least one parcel file")
		os.Exit(1)
	}
	sink := signal.NewTextSink(os.Stdout, signal.CatInstall)
	if _, err := newDomain(sink, args); err != nil {
		fail(err)
	}
	fmt.Println(green("installed"), strings.Join(args, ", "))
}

func cmdLoad(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, red("Error")+": load requires an import path")
		os.Exit(1)
	}
	importPath := args[0]
	sink := signal.NewTextSink(os.Stdout, signal.CatInstall|signal.CatImport)
	d, err := newDomain(sink, args[1:])
	if err != nil {
		fail(err)
	}
	mod, err := d.Import(importPath)
	if err != nil {
		fail(err)
	}
	printModule(importPath, mod)
}

func printModule(label string, mod *model.Module) {
	fmt.Println(bold(label) + ":")
	ids := mod.View()
	names := make([]string, 0, len(ids))
	byName := make(map[string]model.ItemID, len(ids))
	for _, id := range ids {
		name, _ := mod.NameByID(id)
		names = append(names, name)
		byName[name] = id
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Println("  " + mod.Describe(byName[name]))
	}
}

func fail(err error) {
	if d, ok := signal.As(err); ok {
		fmt.Fprintf(os.Stderr, "%s [%s]: %s\n", red("Error"), yellow(string(d.Signal)), d.Message)
	} else {
		fmt.Fprintf(os.Stderr, "%s: %v\n", red("Error"), err)
	}
	os.Exit(1)
}

// cmdInspect opens an interactive session over a domain, preinstalling any
// parcel files given on the command line.
func cmdInspect(args []string) {
	sink := signal.NewTextSink(os.Stdout, signal.CatInstall|signal.CatImport)
	d, err := newDomain(sink, args)
	if err != nil {
		fail(err)
	}

	line := liner.NewLiner()
	defer line.Close()
	line.SetCompleter(func(s string) (c []string) {
		for _, cmd := range []string{":install", ":import", ":load", ":stats", ":quit"} {
			if strings.HasPrefix(cmd, s) {
				c = append(c, cmd)
			}
		}
		return
	})

	fmt.Println(bold("yamarun inspect") + " - :help for commands, :quit to exit")
	runInspectLoop(d, line, os.Stdout)
}

func runInspectLoop(d *domain.Domain, line *liner.State, out io.Writer) {
	for {
		input, err := line.Prompt("yama> ")
		if err == io.EOF {
			fmt.Fprintln(out, green("goodbye"))
			return
		}
		if err != nil {
			fmt.Fprintf(out, "%s: %v\n", red("Error"), err)
			continue
		}
		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		line.AppendHistory(input)

		fields := strings.Fields(input)
		switch fields[0] {
		case ":quit", ":q":
			return
		case ":help":
			fmt.Fprintln(out, "commands: :install <file>  :import <path>  :load <fqname>  :stats  :quit")
		case ":install":
			if len(fields) != 2 {
				fmt.Fprintln(out, red("Error")+": usage: :install <parcel.yaml>")
				continue
			}
			p, err := parcelfile.Load(fields[1])
			if err != nil {
				fmt.Fprintf(out, "%s: %v\n", red("Error"), err)
				continue
			}
			md := p.Metadata()
			batch := parcel.Batch{Entries: []parcel.Entry{{InstallName: md.SelfName, Parcel: p}}}
			for _, dep := range md.DepNames {
				batch.Mappings = append(batch.Mappings, parcel.DepMapping{InstallerName: md.SelfName, DepName: dep, Target: dep})
			}
			if err := d.Install(batch); err != nil {
				fmt.Fprintf(out, "%s: %v\n", red("Error"), err)
				continue
			}
			fmt.Fprintln(out, green("installed"), md.SelfName)
		case ":import":
			if len(fields) != 2 {
				fmt.Fprintln(out, red("Error")+": usage: :import <import-path>")
				continue
			}
			mod, err := d.Import(fields[1])
			if err != nil {
				fmt.Fprintf(out, "%s: %v\n", red("Error"), err)
				continue
			}
			printModuleTo(out, fields[1], mod)
		case ":load":
			if len(fields) != 2 {
				fmt.Fprintln(out, red("Error")+": usage: :load <fq-name>")
				continue
			}
			ref, err := d.Load(fields[1])
			if err != nil {
				fmt.Fprintf(out, "%s: %v\n", red("Error"), err)
				continue
			}
			fmt.Fprintf(out, "%s: kind=%s\n", cyan(ref.FQName()), ref.Kind())
		case ":stats":
			hits, misses := d.Stats()
			fmt.Fprintf(out, "memo hits=%d misses=%d\n", hits, misses)
		default:
			fmt.Fprintf(out, "%s: unknown command %q\n", red("Error"), fields[0])
		}
	}
}

func printModuleTo(out io.Writer, label string, mod *model.Module) {
	fmt.Fprintln(out, bold(label)+":")
	ids := mod.View()
	names := make([]string, 0, len(ids))
	byName := make(map[string]model.ItemID, len(ids))
	for _, id := range ids {
		name, _ := mod.NameByID(id)
		names = append(names, name)
		byName[name] = id
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintln(out, "  "+mod.Describe(byName[name]))
	}
}
