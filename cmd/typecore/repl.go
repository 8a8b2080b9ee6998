package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/glyphlang/typecore/internal/config"
	"github.com/glyphlang/typecore/internal/coreerrors"
	"github.com/glyphlang/typecore/internal/environment"
	"github.com/peterh/liner"
)

var (
	green = color.New(color.FgGreen).SprintFunc()
	red   = color.New(color.FgRed).SprintFunc()
	dim   = color.New(color.Faint).SprintFunc()
)

// runREPL starts an interactive query session over the environment
// built from fixturePath ("" builds an empty stack, useful for `join`/
// `<=` queries against bare builtin types with no declared classes).
func runREPL(fixturePath string) {
	var stack *environment.Stack
	if fixturePath != "" {
		s, err := buildStack(fixturePath)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		stack = s
	} else {
		empty := func(environment.ModuleReference) (environment.ParsedSource, []coreerrors.Error) {
			return environment.ParsedSource{}, nil
		}
		stack = environment.NewStack(empty, config.Default(), nil)
	}

	line := liner.NewLiner()
	defer line.Close()
	line.SetCompleter(func(l string) (c []string) {
		for _, cmd := range []string{"t1 <= t2", "join(", "meet(", "attr(", ":quit"} {
			if strings.HasPrefix(cmd, l) {
				c = append(c, cmd)
			}
		}
		return
	})

	historyFile := filepath.Join(os.TempDir(), ".typecore_history")
	if f, err := os.Open(historyFile); err == nil {
		_, _ = line.ReadHistory(f)
		f.Close()
	}
	defer func() {
		if f, err := os.Create(historyFile); err == nil {
			_, _ = line.WriteHistory(f)
			f.Close()
		}
	}()

	fmt.Println(dim("typecore repl — queries: `T1 <= T2`, `join(T1, T2)`, `meet(T1, T2)`, `attr(Class, name)`; :quit to exit"))

	resolution := stack.Attributes()
	for {
		input, err := line.Prompt("typecore> ")
		if err == io.EOF {
			fmt.Println()
			return
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", red("error"), err)
			continue
		}
		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		if input == ":quit" || input == ":exit" {
			return
		}
		line.AppendHistory(input)
		evalQuery(resolution, input)
	}
}

// evalQuery parses and runs one REPL line against resolution — a tiny
// hand-rolled grammar covering the three query forms the spec names
// (§4.5's signature/constraint surface exercised interactively), not a
// general expression evaluator.
func evalQuery(resolution *environment.AttributeResolution, input string) {
	switch {
	case strings.HasPrefix(input, "attr("):
		evalAttrQuery(resolution, input)
	case strings.HasPrefix(input, "join(") || strings.HasPrefix(input, "meet("):
		evalLatticeQuery(resolution, input)
	case strings.Contains(input, "<="):
		evalSubtypeQuery(resolution, input)
	default:
		fmt.Printf("%s: unrecognized query %q\n", red("error"), input)
	}
}

func evalAttrQuery(resolution *environment.AttributeResolution, input string) {
	inner := strings.TrimSuffix(strings.TrimPrefix(input, "attr("), ")")
	parts := strings.SplitN(inner, ",", 2)
	if len(parts) != 2 {
		fmt.Printf("%s: expected attr(Class, name)\n", red("error"))
		return
	}
	className := strings.TrimSpace(parts[0])
	name := strings.TrimSpace(parts[1])
	t, ok := resolution.Attribute(className, name)
	if !ok {
		fmt.Printf("%s: %s.%s not found\n", red("error"), className, name)
		return
	}
	fmt.Println(green(t.String()))
}

func evalLatticeQuery(resolution *environment.AttributeResolution, input string) {
	op := "join"
	inner := strings.TrimSuffix(strings.TrimPrefix(input, "join("), ")")
	if strings.HasPrefix(input, "meet(") {
		op = "meet"
		inner = strings.TrimSuffix(strings.TrimPrefix(input, "meet("), ")")
	}
	parts := strings.SplitN(inner, ",", 2)
	if len(parts) != 2 {
		fmt.Printf("%s: expected %s(T1, T2)\n", red("error"), op)
		return
	}
	left := resolution.ResolveLiteral(parseAnnotationString(parts[0]), "")
	right := resolution.ResolveLiteral(parseAnnotationString(parts[1]), "")
	var result fmt.Stringer
	if op == "join" {
		result = resolution.Join(left, right)
	} else {
		result = resolution.Meet(left, right)
	}
	fmt.Println(green(result.String()))
}

func evalSubtypeQuery(resolution *environment.AttributeResolution, input string) {
	parts := strings.SplitN(input, "<=", 2)
	if len(parts) != 2 {
		fmt.Printf("%s: expected T1 <= T2\n", red("error"))
		return
	}
	left := resolution.ResolveLiteral(parseAnnotationString(parts[0]), "")
	right := resolution.ResolveLiteral(parseAnnotationString(parts[1]), "")
	ok := resolution.ConstraintsSolutionExists(left, right)
	if ok {
		fmt.Println(green("true"))
	} else {
		fmt.Println(red("false"))
	}
}
