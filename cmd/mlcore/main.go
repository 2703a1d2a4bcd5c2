package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/peterh/liner"

	"github.com/mlcore-lang/mlcore/internal/catalog"
	"github.com/mlcore-lang/mlcore/internal/parser"
	"github.com/mlcore-lang/mlcore/internal/replcore"
	"github.com/mlcore-lang/mlcore/internal/resolve"
	"github.com/mlcore-lang/mlcore/internal/session"
	"github.com/mlcore-lang/mlcore/internal/types"
)

var (
	red    = color.New(color.FgRed).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	cyan   = color.New(color.FgCyan).SprintFunc()
)

func main() {
	var (
		hybridFlag   = flag.Bool("hybrid", false, "Enable the relationalizer (the HYBRID session property)")
		configFlag   = flag.String("config", "", "Path to a YAML session-properties file")
		fixturesFlag = flag.String("fixtures", "", "Path to a YAML fixtures file exposed as the external catalog")
		helpFlag     = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *helpFlag || flag.NArg() == 0 {
		printHelp()
		return
	}

	cfg, err := loadConfig(*configFlag, *hybridFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", red("Error"), err)
		os.Exit(2)
	}
	cat, err := loadFixtures(*fixturesFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", red("Error"), err)
		os.Exit(2)
	}

	switch flag.Arg(0) {
	case "run":
		if flag.NArg() < 2 {
			fmt.Fprintf(os.Stderr, "%s: missing file argument\n", red("Error"))
			fmt.Println("Usage: mlcore run <file.ml>")
			os.Exit(2)
		}
		os.Exit(runFile(cfg, cat, flag.Arg(1)))

	case "repl":
		runREPL(cfg, cat)

	case "check":
		if flag.NArg() < 2 {
			fmt.Fprintf(os.Stderr, "%s: missing file argument\n", red("Error"))
			fmt.Println("Usage: mlcore check <file.ml>")
			os.Exit(2)
		}
		os.Exit(checkFile(flag.Arg(1)))

	default:
		fmt.Fprintf(os.Stderr, "%s: unknown command %q\n", red("Error"), flag.Arg(0))
		printHelp()
		os.Exit(2)
	}
}

func loadConfig(path string, hybrid bool) (session.Config, error) {
	cfg := session.Config{}
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return cfg, err
		}
		defer f.Close()
		cfg, err = session.LoadConfig(f)
		if err != nil {
			return cfg, err
		}
	}
	if hybrid {
		cfg.Hybrid = true
	}
	return cfg, nil
}

func loadFixtures(path string) (catalog.ExternalCatalog, error) {
	if path == "" {
		return nil, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return catalog.FromYAML(f)
}

func runFile(cfg session.Config, cat catalog.ExternalCatalog, path string) int {
	src, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", red("Error"), err)
		return 2
	}
	r := replcore.New(session.New(cfg, cat))
	out, err := r.Run(path, string(src))
	fmt.Print(out)
	printWarnings(r)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", red("Error"), err)
	}
	return replcore.ExitCode(err)
}

func checkFile(path string) int {
	src, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", red("Error"), err)
		return 2
	}
	f, err := parser.ParseFile(path, src)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", red("Error"), err)
		return 2
	}
	ts := types.NewTypeSystem()
	r := resolve.New(ts, types.NewDataRegistry())
	if _, _, err := r.ResolveFile(types.NewEnv(), f); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", red("Error"), err)
		return 2
	}
	fmt.Printf("%s: %s\n", cyan(path), "ok")
	return 0
}

func runREPL(cfg session.Config, cat catalog.ExternalCatalog) {
	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	r := replcore.New(session.New(cfg, cat))
	fmt.Println(cyan("mlcore"), "— type statements terminated by ';', Ctrl-D to exit")

	var pending strings.Builder
	for {
		prompt := "> "
		if pending.Len() > 0 {
			prompt = "| "
		}
		input, err := line.Prompt(prompt)
		if err != nil {
			fmt.Println()
			return
		}
		pending.WriteString(input)
		pending.WriteString("\n")
		if !strings.Contains(input, ";") {
			continue
		}
		stmt := pending.String()
		pending.Reset()
		line.AppendHistory(strings.TrimSpace(stmt))

		out, err := r.Run("<stdin>", stmt)
		fmt.Print(out)
		printWarnings(r)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", red("Error"), err)
		}
	}
}

func printWarnings(r *replcore.Runner) {
	for _, w := range r.Warnings() {
		fmt.Fprintf(os.Stderr, "%s: %s\n", yellow("Warning"), w.Error())
	}
}

func printHelp() {
	fmt.Println(`mlcore — an ML-family interpreter

Usage:
  mlcore [flags] run <file.ml>     Execute a file and print its bindings
  mlcore [flags] repl              Start an interactive session
  mlcore check <file.ml>           Parse and type-check only

Flags:
  -hybrid           Enable the relationalizer (HYBRID session property)
  -config <path>    Load session properties from a YAML file
  -fixtures <path>  Expose a YAML fixtures file as the external catalog
  -help             Show this help`)
}
