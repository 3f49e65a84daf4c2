// Package main is the entry point for the scimark tool.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"scimark"
)

const version = "0.1.0"

func main() {
	outputFlag := flag.String("output", "", "Output file path (default: input path with the opposite extension).")
	forceFlag := flag.Bool("force", false, "Overwrite the output file if it already exists.")
	citationKeyFormatFlag := flag.String("citation-key-format", "authorYearTitle", "Citation key format for recovered Zotero entries: authorYearTitle, authorYear, or numeric.")
	bibFlag := flag.String("bib", "", "BibTeX file to use as the bibliography (overrides frontmatter's bibliography key).")
	templateFlag := flag.String("template", "", "Template .docx file supplying base styles.")
	authorFlag := flag.String("author", "", "Author name stamped onto tracked changes and comments.")
	mixedCitationStyleFlag := flag.String("mixed-citation-style", "separate", "How a citation mixing Zotero-backed and plain keys renders: separate or unified.")
	cslCacheDirFlag := flag.String("csl-cache-dir", "", "Directory to cache downloaded CSL styles in.")
	debugFlag := flag.Bool("debug", false, "Enable verbose debug output.")
	dDebugFlag := flag.Bool("D", false, "Short alias for --debug.")
	versionFlag := flag.Bool("version", false, "Print the version and exit.")

	flag.Parse()

	if *versionFlag {
		fmt.Println("scimark " + version)
		return
	}
	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: scimark [flags] <input.md|input.docx>")
		flag.PrintDefaults()
		os.Exit(1)
	}

	isDebugMode := *debugFlag || *dDebugFlag
	logger := logrus.New()
	if isDebugMode {
		logger.SetLevel(logrus.DebugLevel)
	} else {
		logger.SetLevel(logrus.WarnLevel)
	}

	input := flag.Arg(0)
	opts := scimark.Options{
		AuthorName:         *authorFlag,
		Debug:              isDebugMode,
		Logger:             logger,
		CitationKeyFormat:  scimark.CitationKeyFormat(*citationKeyFormatFlag),
		MixedCitationStyle: scimark.MixedCitationStyle(*mixedCitationStyleFlag),
		CSLCacheDir:        *cslCacheDirFlag,
		BibtexOverride:     readFileOrEmpty(*bibFlag),
		TemplateDocx:       readBytesOrNil(*templateFlag),
		OnStyleNotFound:    func(string) bool { return false },
	}

	switch strings.ToLower(filepath.Ext(input)) {
	case ".md", ".markdown":
		runExport(input, *outputFlag, *forceFlag, opts)
	case ".docx":
		runImport(input, *outputFlag, *forceFlag, opts)
	default:
		fmt.Fprintf(os.Stderr, "scimark: cannot infer conversion direction from %q (expected .md or .docx)\n", input)
		os.Exit(1)
	}
}

func runExport(input, output string, force bool, opts scimark.Options) {
	md, err := os.ReadFile(input)
	if err != nil {
		fail("reading %s: %v", input, err)
	}
	out, warnings, err := scimark.ConvertMdToDocx(string(md), opts)
	reportWarnings(warnings)
	if err != nil {
		fail("converting %s: %v", input, err)
	}
	dest := output
	if dest == "" {
		dest = strings.TrimSuffix(input, filepath.Ext(input)) + ".docx"
	}
	writeOutput(dest, out, force)
}

func runImport(input, output string, force bool, opts scimark.Options) {
	data, err := os.ReadFile(input)
	if err != nil {
		fail("reading %s: %v", input, err)
	}
	md, bib, warnings, err := scimark.ConvertDocx(data, opts)
	reportWarnings(warnings)
	if err != nil {
		fail("converting %s: %v", input, err)
	}
	dest := output
	if dest == "" {
		dest = strings.TrimSuffix(input, filepath.Ext(input)) + ".md"
	}
	writeOutput(dest, []byte(md), force)
	if bib != "" {
		bibPath := strings.TrimSuffix(dest, filepath.Ext(dest)) + ".bib"
		writeOutput(bibPath, []byte(bib), force)
	}
}

func writeOutput(path string, data []byte, force bool) {
	if !force {
		if _, err := os.Stat(path); err == nil {
			fail("%s already exists (use --force to overwrite)", path)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		fail("writing %s: %v", path, err)
	}
}

func reportWarnings(warnings []scimark.Warning) {
	for _, w := range warnings {
		fmt.Fprintf(os.Stderr, "warning: %s: %s\n", w.Kind, w.Message)
	}
}

func readFileOrEmpty(path string) string {
	if path == "" {
		return ""
	}
	data, err := os.ReadFile(path)
	if err != nil {
		fail("reading %s: %v", path, err)
	}
	return string(data)
}

func readBytesOrNil(path string) []byte {
	if path == "" {
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		fail("reading %s: %v", path, err)
	}
	return data
}

func fail(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "scimark: "+format+"\n", args...)
	os.Exit(1)
}
