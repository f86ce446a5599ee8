// Package main provides a CLI that parses DJNML files.
// Usage: djnml [--output json|text] [--misses] [--vocabulary codes.yaml] FILE...
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"djnml-feed/internal/domain/codes"
	"djnml-feed/internal/domain/entity"
	"djnml-feed/internal/infra/langdetect"
	"djnml-feed/internal/infra/timeparse"
	"djnml-feed/internal/infra/xmltree"
	"djnml-feed/internal/observability/logging"
	"djnml-feed/internal/usecase/parse"
	"djnml-feed/pkg/config"
)

// Exit codes.
const (
	exitOK          = 0
	exitUsage       = 1
	exitNotFound    = 2
	exitInvalidCode = 3
	exitMalformed   = 4
)

// FileOutput is the JSON form of one parsed file. Document decodes back
// through parse.Engine.BuildDocument.
type FileOutput struct {
	Path     string                `json:"path"`
	Key      string                `json:"key,omitempty"`
	Document *parse.DocumentRecord `json:"document,omitempty"`
	Misses   []string              `json:"misses,omitempty"`
	Error    string                `json:"error,omitempty"`

	doc *entity.Document
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run parses every file and returns the process exit code. Files after a
// failure are still parsed; the code reflects the first failure.
func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("djnml", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var (
		outputFormat string
		showMisses   bool
		vocabulary   string
		detectLang   bool
	)
	fs.StringVar(&outputFormat, "output", "json", "Output format: json or text")
	fs.BoolVar(&showMisses, "misses", false, "Include sections that could not be read")
	fs.StringVar(&vocabulary, "vocabulary", config.GetEnvString("CODE_VOCABULARY_PATH", ""), "YAML code vocabulary (default: built-in)")
	fs.BoolVar(&detectLang, "lang", config.GetEnvBool("DJNML_DETECT_LANGUAGE", true), "Detect the language of the body text")
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}

	paths := fs.Args()
	if len(paths) == 0 {
		fmt.Fprintln(stderr, "Error: at least one file is required")
		fmt.Fprintln(stderr, "")
		fmt.Fprintln(stderr, "Usage: djnml [--output json|text] [--misses] [--vocabulary codes.yaml] FILE...")
		return exitUsage
	}
	if outputFormat != "json" && outputFormat != "text" {
		fmt.Fprintf(stderr, "Error: unknown output format %q\n", outputFormat)
		return exitUsage
	}

	logger := logging.NewTextLogger(stderr)

	registry := codes.Default()
	if vocabulary != "" {
		reg, err := codes.LoadRegistryFile(vocabulary)
		if err != nil {
			fmt.Fprintf(stderr, "Error: load vocabulary: %v\n", err)
			return exitUsage
		}
		registry = reg
	}

	opts := []parse.Option{parse.WithLogger(logger)}
	if detectLang {
		opts = append(opts, parse.WithLanguageDetector(langdetect.New(0)))
	}
	engine := parse.NewEngine(xmltree.NewParser(), timeparse.New(), registry, opts...)

	ctx := context.Background()
	code := exitOK
	outputs := make([]FileOutput, 0, len(paths))
	for _, path := range paths {
		out := FileOutput{Path: path}
		rep, err := engine.LoadFileReport(ctx, path)
		if err != nil {
			logger.Error("parse failed", slog.String("path", path), slog.Any("error", err))
			out.Error = err.Error()
			if code == exitOK {
				code = exitCode(err)
			}
			outputs = append(outputs, out)
			continue
		}

		rec := parse.DocumentRecordOf(rep.Document)
		out.Document = &rec
		out.doc = rep.Document
		if key, err := rep.Document.Key(); err == nil {
			out.Key = key.String()
		}
		if showMisses {
			for _, m := range rep.Misses {
				out.Misses = append(out.Misses, m.Error())
			}
		}
		outputs = append(outputs, out)
	}

	var err error
	if outputFormat == "json" {
		err = writeJSON(stdout, outputs)
	} else {
		err = writeText(stdout, outputs)
	}
	if err != nil {
		fmt.Fprintf(stderr, "Error: write output: %v\n", err)
		return exitUsage
	}
	return code
}

func exitCode(err error) int {
	switch {
	case errors.Is(err, entity.ErrNotFound):
		return exitNotFound
	case errors.Is(err, codes.ErrInvalidCode):
		return exitInvalidCode
	default:
		return exitMalformed
	}
}

// writeJSON prints a single object for one file and an array otherwise.
func writeJSON(w io.Writer, outputs []FileOutput) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if len(outputs) == 1 {
		return enc.Encode(outputs[0])
	}
	return enc.Encode(outputs)
}

func writeText(w io.Writer, outputs []FileOutput) error {
	var b strings.Builder
	for i, out := range outputs {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "File: %s\n", out.Path)
		if out.Error != "" {
			fmt.Fprintf(&b, "Error: %s\n", out.Error)
			continue
		}
		doc := out.doc
		if out.Key != "" {
			fmt.Fprintf(&b, "Key: %s\n", out.Key)
		}
		if doc.Headline != nil {
			fmt.Fprintf(&b, "Headline: %s\n", *doc.Headline)
		}
		fmt.Fprintf(&b, "Urgency: %d\n", doc.Urgency)
		if doc.Language != nil {
			fmt.Fprintf(&b, "Language: %s\n", *doc.Language)
		}
		if symbols := doc.Coding.Symbols(); len(symbols) > 0 {
			fmt.Fprintf(&b, "Codes: %s\n", strings.Join(symbols, " "))
		}
		if len(doc.CompanyCodes) > 0 {
			fmt.Fprintf(&b, "Companies: %s\n", strings.Join(doc.CompanyCodes, " "))
		}
		if len(doc.Deletes) > 0 {
			fmt.Fprintf(&b, "Deletes: %d\n", len(doc.Deletes))
		}
		if len(doc.Modifications) > 0 {
			fmt.Fprintf(&b, "Modifications: %d\n", len(doc.Modifications))
		}
		for _, m := range out.Misses {
			fmt.Fprintf(&b, "Miss: %s\n", m)
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}
