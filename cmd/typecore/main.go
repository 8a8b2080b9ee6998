// Command typecore drives the type-inference core from the command
// line: `check` builds the environment stack from a fixture file and
// reports integrity errors, `repl` opens an interactive query session
// over it.
package main

import (
	"fmt"
	"os"

	"github.com/glyphlang/typecore/internal/config"
	"github.com/glyphlang/typecore/internal/coreast"
	"github.com/glyphlang/typecore/internal/environment"
	"github.com/glyphlang/typecore/internal/logging"
	"github.com/glyphlang/typecore/internal/store"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "check":
		if len(os.Args) < 3 {
			fmt.Fprintf(os.Stderr, "usage: %s check <fixtures.yaml> [--store <path>]\n", os.Args[0])
			os.Exit(1)
		}
		storePath := ""
		if len(os.Args) >= 5 && os.Args[3] == "--store" {
			storePath = os.Args[4]
		}
		runCheck(os.Args[2], storePath)
	case "repl":
		fixturePath := ""
		if len(os.Args) >= 3 {
			fixturePath = os.Args[2]
		}
		runREPL(fixturePath)
	case "-help", "--help", "help":
		usage()
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n", os.Args[1])
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, "usage: %s <check|repl> [fixtures.yaml] [--store <path>]\n", os.Args[0])
}

func buildStack(fixturePath string) (*environment.Stack, error) {
	modules, err := loadFixtures(fixturePath)
	if err != nil {
		return nil, err
	}

	log := logging.New(os.Stderr, logging.ParseLevel(config.Default().LogLevel))
	stack := environment.NewStack(fixtureParseFunc(modules), config.Default(), log)

	var updates []environment.IncrementalUpdate
	for ref := range modules {
		updates = append(updates, environment.IncrementalUpdate{Kind: environment.ModuleAdded, Reference: ref})
	}
	result := stack.ApplyUpdates(updates)
	for ref, errs := range result.SyntaxErrors {
		for _, e := range errs {
			log.Warnf("%s: %s", ref, e.Error())
		}
	}
	return stack, nil
}

func runCheck(fixturePath, storePath string) {
	stack, err := buildStack(fixturePath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	log := logging.New(os.Stderr, logging.ParseLevel(config.Default().LogLevel))

	modules, err := loadFixtures(fixturePath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	resolution := stack.Attributes()
	failed := false
	for className := range classNames(modules) {
		attrs, ok := resolution.AllAttributes(className)
		if !ok {
			fmt.Printf("%-20s <untracked>\n", className)
			failed = true
			continue
		}
		fmt.Printf("%-20s %d attribute(s)\n", className, len(attrs))
	}

	// Populate the module-level layers (spec §4.3 layers 8 and 10) so
	// --store has something to persist beyond the class attribute table
	// `check` already walked above.
	for module, src := range modules {
		for _, stmt := range src.Body {
			switch st := stmt.(type) {
			case coreast.Define:
				stack.UndecoratedFunction(module, st.Signature.Name)
				table := stack.LookupTable(module, st.Signature.Name)
				log.Debugf("typecore: %s.%s lookup table: %d type entr(ies), %d definition entr(ies)",
					module, st.Signature.Name, len(table.Types), len(table.Definitions))
			case coreast.Assign:
				stack.AnnotatedGlobal(module, st.Target)
			}
		}
	}

	if storePath != "" {
		if err := persistStack(stack, storePath); err != nil {
			fmt.Fprintln(os.Stderr, err)
			failed = true
		}
	}

	if failed {
		os.Exit(1)
	}
}

// persistStack opens (or creates) the SQLite side file at storePath and
// writes the stack's currently-cached annotated_globals and
// undecorated_functions entries to it (spec §6), so a later `typecore
// check` run against the same file could seed a fresh Stack via
// Stack.Restore instead of recomputing from the fixtures.
func persistStack(stack *environment.Stack, storePath string) error {
	st, err := store.Open(storePath)
	if err != nil {
		return fmt.Errorf("typecore: open store %s: %w", storePath, err)
	}
	defer st.Close()
	if err := stack.Persist(st); err != nil {
		return fmt.Errorf("typecore: persist to %s: %w", storePath, err)
	}
	return nil
}

// classNames collects every class name declared across modules, so `check`
// can report on each one without internal/environment exposing a "list
// everything" query (the stack is keyed by query, not enumerable by
// design — spec §4.3 layers answer point questions, not listings).
func classNames(modules map[environment.ModuleReference]environment.ParsedSource) map[string]bool {
	out := map[string]bool{}
	for _, src := range modules {
		for _, stmt := range src.Body {
			if cls, ok := stmt.(coreast.Class); ok {
				out[cls.Name] = true
			}
		}
	}
	return out
}
