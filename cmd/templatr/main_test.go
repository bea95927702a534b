package main

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-templatr/templatr/pkg/templatr"
)

const testDocument = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body><w:p><w:r><w:t>Dear {{name}}</w:t></w:r></w:p><w:p><w:r><w:t>{{items}}</w:t></w:r></w:p></w:body></w:document>`

func writeTemplate(t *testing.T, dir string) string {
	t.Helper()
	buf := new(bytes.Buffer)
	w := zip.NewWriter(buf)
	f, err := w.Create("word/document.xml")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.Write([]byte(testDocument)); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	return writeFile(t, dir, "template.docx", buf.String())
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func readDocument(t *testing.T, path string) string {
	t.Helper()
	zr, err := zip.OpenReader(path)
	if err != nil {
		t.Fatalf("invalid output: %v", err)
	}
	defer zr.Close()
	for _, f := range zr.File {
		if f.Name != "word/document.xml" {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			t.Fatal(err)
		}
		defer rc.Close()
		data, err := io.ReadAll(rc)
		if err != nil {
			t.Fatal(err)
		}
		return string(data)
	}
	t.Fatal("document part missing")
	return ""
}

func execute(args ...string) (string, error) {
	root := newRootCmd()
	var out, logs bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&logs)
	root.SetArgs(append([]string{"--color", "off"}, args...))
	err := root.Execute()
	return out.String(), err
}

const validData = `{"items": [
	{"placeholder": "{{name}}", "type": "text", "value": "Ann"},
	{"placeholder": "{{items}}", "type": "list", "value": [
		{"type": "text", "value": "one"},
		{"type": "text", "value": "two"}
	]}
]}`

func TestFillCommand(t *testing.T) {
	dir := t.TempDir()
	template := writeTemplate(t, dir)
	data := writeFile(t, dir, "data.json", validData)
	output := filepath.Join(dir, "out.docx")

	out, err := execute("fill", template, data, output)
	if err != nil {
		t.Fatalf("fill failed: %v\n%s", err, out)
	}
	if !strings.Contains(out, "ok "+output+" written (2 directives, 3 replacements)") {
		t.Errorf("Unexpected output %q", out)
	}

	doc := readDocument(t, output)
	for _, want := range []string{"Dear Ann", "one", "two"} {
		if !strings.Contains(doc, want) {
			t.Errorf("Expected %q in output document", want)
		}
	}
}

func TestFillCommandUnresolved(t *testing.T) {
	dir := t.TempDir()
	template := writeTemplate(t, dir)
	data := writeFile(t, dir, "data.json", `{"items": [{"placeholder": "{{nope}}", "type": "text", "value": "x"}]}`)
	output := filepath.Join(dir, "out.docx")

	out, err := execute("fill", template, data, output)
	if err != nil {
		t.Fatalf("fill failed: %v", err)
	}
	if !strings.Contains(out, "warning: {{nope}} (text) left unresolved") {
		t.Errorf("Expected unresolved warning, got %q", out)
	}

	_, err = execute("--strict", "fill", template, data, output+".strict")
	if err == nil {
		t.Errorf("Expected strict mode to fail")
	}
	if _, statErr := os.Stat(output + ".strict"); !os.IsNotExist(statErr) {
		t.Errorf("Output must not be written in strict failure")
	}
}

func TestFillCommandErrors(t *testing.T) {
	dir := t.TempDir()
	template := writeTemplate(t, dir)
	bad := writeFile(t, dir, "bad.json", `{"items": [{"placeholder": "{{items}}", "type": "list", "value": "x"}]}`)
	output := filepath.Join(dir, "out.docx")

	if _, err := execute("fill", template, bad, output); err == nil {
		t.Errorf("Expected malformed directive error")
	}
	if _, err := os.Stat(output); !os.IsNotExist(err) {
		t.Errorf("Output must not be written on error")
	}

	if _, err := execute("fill", template); err == nil {
		t.Errorf("Expected argument count error")
	}
}

func TestCheckCommand(t *testing.T) {
	dir := t.TempDir()
	template := writeTemplate(t, dir)
	data := writeFile(t, dir, "data.json", `{"items": [
		{"placeholder": "{{name}}", "type": "text", "value": "Ann"},
		{"placeholder": "{{logo}}", "type": "image", "value": "missing.png"}
	]}`)

	out, err := execute("check", "--format", "json", template, data)
	if err == nil {
		t.Fatalf("Expected check to fail on the missing image")
	}

	var result struct {
		Directives int `json:"directives"`
		Issues     []struct {
			Placeholder string `json:"placeholder"`
			Severity    string `json:"severity"`
			Code        string `json:"code"`
		} `json:"issues"`
	}
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatalf("Invalid JSON output: %v\n%s", err, out)
	}
	if result.Directives != 2 {
		t.Errorf("Expected 2 directives, got %d", result.Directives)
	}

	codes := map[string]bool{}
	for _, issue := range result.Issues {
		codes[issue.Code] = true
	}
	if !codes["IMAGE_UNREADABLE"] || !codes["MARKER_NOT_FOUND"] {
		t.Errorf("Unexpected issues %+v", result.Issues)
	}

	clean := writeFile(t, dir, "clean.json", validData)
	out, err = execute("check", template, clean)
	if err != nil {
		t.Fatalf("check failed: %v", err)
	}
	if !strings.Contains(out, "ok 2 directives checked, 0 warnings") {
		t.Errorf("Unexpected output %q", out)
	}

	if _, err := execute("check", "--format", "xml", template, clean); err == nil {
		t.Errorf("Expected unsupported format error")
	}
}

func TestBatchCommand(t *testing.T) {
	dir := t.TempDir()
	template := writeTemplate(t, dir)
	dataDir := filepath.Join(dir, "data")
	if err := os.Mkdir(dataDir, 0o755); err != nil {
		t.Fatal(err)
	}
	writeFile(t, dataDir, "ann.json", validData)
	writeFile(t, dataDir, "bob.json", strings.Replace(validData, "Ann", "Bob", 1))
	writeFile(t, dataDir, "broken.json", `{"items": `)
	writeFile(t, dataDir, "notes.txt", "ignored")
	outDir := filepath.Join(dir, "out")

	out, err := execute("batch", "--jobs", "2", template, dataDir, outDir)
	if err == nil || !strings.Contains(err.Error(), "1 of 3 fills failed") {
		t.Errorf("Expected one failure, got %v", err)
	}
	var parseErr *templatr.ParseError
	if !errors.As(err, &parseErr) || !strings.HasSuffix(parseErr.Path, "broken.json") {
		t.Errorf("Expected the parse error of broken.json in %v", err)
	}

	if doc := readDocument(t, filepath.Join(outDir, "ann.docx")); !strings.Contains(doc, "Dear Ann") {
		t.Errorf("Unexpected ann.docx")
	}
	if doc := readDocument(t, filepath.Join(outDir, "bob.docx")); !strings.Contains(doc, "Dear Bob") {
		t.Errorf("Unexpected bob.docx")
	}
	if _, err := os.Stat(filepath.Join(outDir, "broken.docx")); !os.IsNotExist(err) {
		t.Errorf("Broken data must not produce output")
	}
	if !strings.Contains(out, "error: ") || strings.Count(out, "ok ") != 2 {
		t.Errorf("Unexpected output %q", out)
	}
}

func TestVersionCommand(t *testing.T) {
	out, err := execute("version")
	if err != nil {
		t.Fatalf("version failed: %v", err)
	}
	if !strings.HasPrefix(out, "templatr "+version+" (") {
		t.Errorf("Unexpected output %q", out)
	}
}

func TestConfigFlag(t *testing.T) {
	dir := t.TempDir()
	template := writeTemplate(t, dir)
	data := writeFile(t, dir, "data.json", `{"items": [{"placeholder": "{{nope}}", "type": "text", "value": "x"}]}`)
	config := writeFile(t, dir, "templatr.toml", "strict_mode = true\n")

	if _, err := execute("--config", config, "fill", template, data, filepath.Join(dir, "out.docx")); err == nil {
		t.Errorf("Expected strict mode from config file")
	}

	badConfig := writeFile(t, dir, "bad.toml", "nope = 1\n")
	if _, err := execute("--config", badConfig, "version"); err != nil {
		t.Errorf("version must not load the config: %v", err)
	}
	if _, err := execute("--config", badConfig, "fill", template, data, filepath.Join(dir, "out2.docx")); err == nil {
		t.Errorf("Expected config error")
	}
}
