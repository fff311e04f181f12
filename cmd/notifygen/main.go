// cmd/notifygen/main.go
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"go/ast"
	"go/format"
	"go/parser"
	"go/token"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"text/template"
	"unicode"
	"unicode/utf8"
)

// This binary is a code-generation tool.
//
// It reads a JSON specification describing a set of typed events, then
// generates a facade that exposes compile-time subscription and broadcast
// methods over one notifier.Subject per event.
//
// Key behaviors:
// - Reads spec JSON: package, facadeName, policy, events (name + payload type)
// - Locates the "owner" Go file (the file containing the go:generate for cmd/notifygen) in the same directory
// - Reads imports from the owner file and reuses them in the generated file (so generated code matches local style)
// - Ensures the notifier package is importable under the identifier `notifier`
// - Verifies each local payload type is actually declared in the target package
// - Formats the generated source with go/format so committed output is gofmt-clean
// - Writes output atomically (temp file + rename) to avoid partial writes

// Event describes one event exposed through the generated facade.
// Each event results in generated On<Name>/On<Name>Func/Emit<Name> methods.
type Event struct {
	// Name is used for method naming (On<Name>, Emit<Name>). Must be exported.
	Name string `json:"name"`

	// Payload is the Go type carried by the event. A bare identifier refers to
	// a type in the target package; a qualified name (pkg.Type) is taken as-is.
	Payload string `json:"payload"`
}

// Imports defines external packages required by the generated code.
//
// Notifier is optional: we prefer imports from the owner file. It is used as
// a fallback when the owner file does not provide a usable `notifier` import.
type Imports struct {
	// Optional fallback import path for the notifier package.
	Notifier string `json:"notifier"`
}

// Spec is the full input schema consumed by the generator.
type Spec struct {
	Package string `json:"package"`

	FacadeName string `json:"facadeName"`

	// Policy selects the failure policy of every generated subject:
	// "" or "fail-fast" (default), or "collect-all".
	Policy string `json:"policy"`

	Imports Imports `json:"imports"`
	Events  []Event `json:"events"`

	// VerifyPayloads is optional:
	// - nil: verify local payload types against the target package's AST
	// - true/false: explicit override
	VerifyPayloads *bool `json:"verifyPayloads"`
}

// ImportSpec models one Go import: optional alias and full import path.
type ImportSpec struct {
	Alias string
	Path  string
}

// eventData is one event prepared for the template (field name precomputed).
type eventData struct {
	Name    string
	Payload string
	Field   string
}

// templateData is the input passed to the Go template.
type templateData struct {
	Spec        Spec
	Events      []eventData
	ImportsList []ImportSpec
	Collect     bool
}

// run executes the generator logic and returns an exit code.
// It exists separately from main to allow unit testing without os.Exit.
func run(args []string, stderr io.Writer) int {
	flags := flag.NewFlagSet("notifygen", flag.ContinueOnError)
	flags.SetOutput(stderr)

	specPath := flags.String("spec", "", "path to facade.events.json")
	outPath := flags.String("out", "", "output .gen.go file path")

	if err := flags.Parse(args); err != nil {
		return 2
	}

	if strings.TrimSpace(*specPath) == "" || strings.TrimSpace(*outPath) == "" {
		_, _ = fmt.Fprintln(stderr, "usage: notifygen -spec <file.events.json> -out <file.gen.go>")
		return 2
	}

	specBytes, err := os.ReadFile(*specPath)
	must(err)

	var spec Spec
	must(json.Unmarshal(specBytes, &spec))

	validateSpec(&spec)

	collect, err := parsePolicy(spec.Policy)
	must(err)

	generatedFilePath := filepath.Clean(*outPath)
	packageDir := filepath.Dir(generatedFilePath)

	ownerGoFilePath, err := findOwnerGoGenerateFile(packageDir)
	if err != nil {
		// If we can't find the owner file, we can still generate.
		// resolveImports will fall back to spec.imports.notifier when needed.
		ownerGoFilePath = ""
	}

	if err := verifyPayloadTypes(&spec, packageDir); err != nil {
		// User-actionable: a payload names a type the target package never declares.
		panic(err)
	}

	importsList, err := resolveImports(ownerGoFilePath, &spec)
	if err != nil {
		// User-actionable: generated code cannot reference the notifier package.
		panic(err)
	}

	data := templateData{
		Spec:        spec,
		Events:      prepareEvents(spec.Events),
		ImportsList: importsList,
		Collect:     collect,
	}

	var out strings.Builder
	must(genTemplate.Execute(&out, data))

	// Template output carries range artifacts (stray blank lines, unaligned
	// fields); gofmt it so the committed file is clean.
	formatted, err := format.Source([]byte(out.String()))
	must(err)

	must(writeFileAtomic(generatedFilePath, formatted, 0o644))
	return 0
}

func main() {
	os.Exit(run(os.Args[1:], os.Stderr))
}

// validateSpec validates semantic correctness of the input specification.
func validateSpec(spec *Spec) {
	var missingFields []string

	requireNonEmpty := func(fieldName, value string) {
		if strings.TrimSpace(value) == "" {
			missingFields = append(missingFields, fieldName)
		}
	}

	requireNonEmpty("package", spec.Package)
	requireNonEmpty("facadeName", spec.FacadeName)

	if len(spec.Events) == 0 {
		missingFields = append(missingFields, "events (must have at least 1)")
	}

	if len(missingFields) > 0 {
		panic(fmt.Errorf("spec missing required fields: %v", missingFields))
	}

	seenNames := make(map[string]struct{}, len(spec.Events))

	for _, event := range spec.Events {
		if event.Name == "" || event.Payload == "" {
			panic(fmt.Errorf("each event must have name/payload; got: %+v", event))
		}
		if !isExportedIdent(event.Name) {
			panic(fmt.Errorf("event name must be an exported identifier: %s", event.Name))
		}
		if _, ok := seenNames[event.Name]; ok {
			panic(fmt.Errorf("duplicate event name: %s", event.Name))
		}
		seenNames[event.Name] = struct{}{}
	}
}

// parsePolicy maps the spec's policy string onto the collect flag.
func parsePolicy(policy string) (collect bool, err error) {
	switch strings.TrimSpace(policy) {
	case "", "fail-fast":
		return false, nil
	case "collect-all":
		return true, nil
	default:
		return false, fmt.Errorf("unknown policy %q (want fail-fast or collect-all)", policy)
	}
}

// isExportedIdent reports whether name is a valid exported Go identifier.
func isExportedIdent(name string) bool {
	first, size := utf8.DecodeRuneInString(name)
	if first == utf8.RuneError || !unicode.IsUpper(first) {
		return false
	}
	for _, r := range name[size:] {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' {
			return false
		}
	}
	return true
}

// lowerFirst lowercases the first rune, turning an event name into its
// unexported facade field name.
func lowerFirst(name string) string {
	first, size := utf8.DecodeRuneInString(name)
	if first == utf8.RuneError {
		return name
	}
	return string(unicode.ToLower(first)) + name[size:]
}

// prepareEvents precomputes per-event template data.
func prepareEvents(events []Event) []eventData {
	out := make([]eventData, 0, len(events))
	for _, event := range events {
		out = append(out, eventData{
			Name:    event.Name,
			Payload: event.Payload,
			Field:   lowerFirst(event.Name),
		})
	}
	return out
}

// findOwnerGoGenerateFile finds the Go source file in packageDir that contains a go:generate
// directive invoking cmd/notifygen.
//
// This is used to discover the owner file's imports so generated code matches local style.
func findOwnerGoGenerateFile(packageDir string) (string, error) {
	dirEntries, err := os.ReadDir(packageDir)
	if err != nil {
		return "", err
	}

	for _, entry := range dirEntries {
		if entry.IsDir() {
			continue
		}

		fileName := entry.Name()
		if !strings.HasSuffix(fileName, ".go") ||
			strings.HasSuffix(fileName, "_test.go") ||
			strings.HasSuffix(fileName, ".gen.go") {
			continue
		}

		filePath := filepath.Join(packageDir, fileName)
		fileBytes, err := os.ReadFile(filePath)
		if err != nil {
			// Best-effort: unreadable file shouldn't break generation.
			continue
		}

		if bytes.Contains(fileBytes, []byte("go:generate")) && bytes.Contains(fileBytes, []byte("cmd/notifygen")) {
			return filePath, nil
		}
	}

	return "", fmt.Errorf("could not find owner file with go:generate invoking cmd/notifygen in %s", packageDir)
}

// readImportsFromFile parses imports from a Go file.
func readImportsFromFile(goFilePath string) ([]ImportSpec, error) {
	fileSet := token.NewFileSet()
	parsedFile, err := parser.ParseFile(fileSet, goFilePath, nil, parser.ImportsOnly)
	if err != nil {
		return nil, err
	}

	var imports []ImportSpec
	for _, importDecl := range parsedFile.Imports {
		importPath := strings.Trim(importDecl.Path.Value, `"`)
		importAlias := ""
		if importDecl.Name != nil {
			importAlias = importDecl.Name.Name
		}
		imports = append(imports, ImportSpec{Alias: importAlias, Path: importPath})
	}

	return imports, nil
}

func ensureImport(imports *[]ImportSpec, required ImportSpec) {
	for _, existing := range *imports {
		if existing.Path == required.Path {
			// Don't duplicate the path; keep existing alias as-is.
			return
		}
	}
	*imports = append(*imports, required)
}

func containsAlias(imports []ImportSpec, alias string) bool {
	for _, existing := range imports {
		if existing.Alias == alias && alias != "" {
			return true
		}
	}
	return false
}

func importDefaultIdent(importPath string) string {
	// Import paths always use forward slashes, even on Windows.
	return path.Base(strings.TrimSpace(importPath))
}

// hasUsableNotifierIdent returns true if generated code can refer to
// `notifier.Subject` with the imports currently present.
func hasUsableNotifierIdent(imports []ImportSpec) bool {
	// Explicit alias notifier "..."
	if containsAlias(imports, "notifier") {
		return true
	}
	// Default identifier is the base of the import path if Alias == "".
	for _, imp := range imports {
		if imp.Alias == "" && importDefaultIdent(imp.Path) == "notifier" {
			return true
		}
	}
	return false
}

// resolveImports builds the final imports list for the generated file.
//
// Rules:
// - Prefer imports from owner file, if available
// - Guarantee a usable `notifier` identifier:
//   - Explicit alias `notifier "..."`, OR
//   - default import name is `notifier` (import path base == "notifier"), OR
//   - fall back to spec.imports.notifier and import it as `notifier "..."`.
func resolveImports(ownerFilePath string, spec *Spec) ([]ImportSpec, error) {
	// Start with owner imports, best-effort.
	var importsFromOwner []ImportSpec
	if strings.TrimSpace(ownerFilePath) != "" {
		parsedOwnerImports, err := readImportsFromFile(ownerFilePath)
		if err == nil {
			importsFromOwner = parsedOwnerImports
		}
		// If parsing fails, fall back to empty and rely on spec fallback behavior.
	}

	finalImports := make([]ImportSpec, 0, len(importsFromOwner)+1)
	finalImports = append(finalImports, importsFromOwner...)

	// If owner already provides a usable identifier `notifier`, we're done.
	if hasUsableNotifierIdent(finalImports) {
		return finalImports, nil
	}

	// Otherwise we must add a fallback notifier import from the spec.
	if strings.TrimSpace(spec.Imports.Notifier) == "" {
		return nil, fmt.Errorf(
			"generated code requires the notifier package, but no import usable as identifier `notifier` was found in the owner file and spec.imports.notifier is empty",
		)
	}

	// Add an explicit alias import so generated code can reference notifier.Subject.
	ensureImport(&finalImports, ImportSpec{Alias: "notifier", Path: spec.Imports.Notifier})
	return finalImports, nil
}

// verifyPayloadTypes checks that every bare payload identifier is declared as
// a type somewhere in the target package directory.
//
// Behavior:
// - If spec.VerifyPayloads != nil, its value decides whether to verify at all.
// - Qualified payloads (pkg.Type) are skipped; the compiler checks those.
// - If the directory cannot be read, verification is skipped (generation in a
//   fresh directory must stay possible).
func verifyPayloadTypes(spec *Spec, sourceDir string) error {
	if spec.VerifyPayloads != nil && !*spec.VerifyPayloads {
		return nil
	}

	wanted := make(map[string]bool)
	for _, event := range spec.Events {
		if strings.Contains(event.Payload, ".") {
			continue
		}
		wanted[event.Payload] = false
	}
	if len(wanted) == 0 {
		return nil
	}

	dirEntries, err := os.ReadDir(sourceDir)
	if err != nil {
		return nil
	}

	fileSet := token.NewFileSet()

	for _, entry := range dirEntries {
		if entry.IsDir() {
			continue
		}

		fileName := entry.Name()
		if !strings.HasSuffix(fileName, ".go") ||
			strings.HasSuffix(fileName, "_test.go") ||
			strings.HasSuffix(fileName, ".gen.go") {
			continue
		}

		filePath := filepath.Join(sourceDir, fileName)

		// Parse with AllErrors so we can still get partial ASTs when possible.
		parsedFile, parseErr := parser.ParseFile(fileSet, filePath, nil, parser.AllErrors)
		if parsedFile == nil {
			_ = parseErr
			continue
		}

		for _, declaration := range parsedFile.Decls {
			genDecl, ok := declaration.(*ast.GenDecl)
			if !ok || genDecl.Tok != token.TYPE {
				continue
			}
			for _, specNode := range genDecl.Specs {
				typeSpec, ok := specNode.(*ast.TypeSpec)
				if !ok || typeSpec.Name == nil {
					continue
				}
				if _, tracked := wanted[typeSpec.Name.Name]; tracked {
					wanted[typeSpec.Name.Name] = true
				}
			}
		}
	}

	var missing []string
	for name, found := range wanted {
		if !found {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("payload types not declared in %s: %v (set verifyPayloads=false to skip this check)", sourceDir, missing)
	}
	return nil
}

// genTemplate is the Go source template used to generate the facade code.
var genTemplate = template.Must(
	template.New("notifygen").Parse(`// Code generated by notifygen; DO NOT EDIT.

package {{.Spec.Package}}

import (
{{range .ImportsList}}
	{{if .Alias}}{{.Alias}} {{end}}"{{.Path}}"
{{end}}
)

// {{.Spec.FacadeName}} is a typed event facade: one subject per event.
type {{.Spec.FacadeName}} struct {
	{{- range .Events}}
	{{.Field}} *notifier.Subject[{{.Payload}}]
	{{- end}}
}

func New{{.Spec.FacadeName}}() *{{.Spec.FacadeName}} {
	return &{{.Spec.FacadeName}}{
		{{- range .Events}}
		{{- if $.Collect}}
		{{.Field}}: notifier.New[{{.Payload}}](notifier.WithPolicy[{{.Payload}}](notifier.CollectAll)),
		{{- else}}
		{{.Field}}: notifier.New[{{.Payload}}](),
		{{- end}}
		{{- end}}
	}
}

{{- range .Events}}

func (e *{{$.Spec.FacadeName}}) On{{.Name}}(sub notifier.Subscriber[{{.Payload}}]) *{{$.Spec.FacadeName}} {
	e.{{.Field}}.Register(sub)
	return e
}

func (e *{{$.Spec.FacadeName}}) On{{.Name}}Func(fn func({{.Payload}}) error) *{{$.Spec.FacadeName}} {
	e.{{.Field}}.Register(notifier.SubscriberFunc[{{.Payload}}](fn))
	return e
}

func (e *{{$.Spec.FacadeName}}) Emit{{.Name}}(payload {{.Payload}}) error {
	return e.{{.Field}}.NotifyAll(payload)
}
{{- end}}
`),
)

// tempFile abstracts an os.File for testability.
type tempFile interface {
	Name() string
	Write([]byte) (int, error)
	Close() error
}

// File operation hooks, overridden in tests.
var (
	createTempFile = func(dir, pattern string) (tempFile, error) { return os.CreateTemp(dir, pattern) }
	chmodFile      = os.Chmod
	renameFile     = os.Rename
	removeFile     = os.Remove
)

// writeFileAtomic writes a file atomically.
//
// It writes to a temporary file in the same directory and then renames it
// over the target path, ensuring readers never observe partial writes.
func writeFileAtomic(targetPath string, data []byte, perm os.FileMode) (err error) {
	targetDir := filepath.Dir(targetPath)

	tmpFile, err := createTempFile(targetDir, filepath.Base(targetPath)+".tmp-*")
	if err != nil {
		return err
	}
	tmpPath := tmpFile.Name()

	defer func() {
		if err != nil {
			_ = removeFile(tmpPath)
		}
	}()

	if _, err = tmpFile.Write(data); err != nil {
		_ = tmpFile.Close()
		return err
	}
	if err = tmpFile.Close(); err != nil {
		return err
	}
	if err = chmodFile(tmpPath, perm); err != nil {
		return err
	}
	if err = renameFile(tmpPath, targetPath); err != nil {
		return err
	}
	return nil
}

// must panics if err is non-nil.
func must(err error) {
	if err != nil {
		panic(err)
	}
}
