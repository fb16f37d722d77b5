package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// testJPEG is a 32x16 baseline JPEG without metadata.
var testJPEG = []byte{
	0xFF, 0xD8,
	0xFF, 0xE0, 0x00, 0x10, 'J', 'F', 'I', 'F', 0x00, 0x01, 0x01, 0x00, 0x00, 0x01, 0x00, 0x01, 0x00, 0x00,
	0xFF, 0xC0, 0x00, 0x0B, 0x08, 0x00, 0x10, 0x00, 0x20, 0x01, 0x01, 0x11, 0x00,
	0xFF, 0xDA, 0x00, 0x08, 0x01, 0x01, 0x00, 0x00, 0x3F, 0x00, 0x12, 0x34, 0x56, 0xFF, 0xD9,
}

func setupCLITest(t *testing.T) string {
	t.Helper()
	base := t.TempDir()
	t.Setenv("HOME", filepath.Join(base, "home"))
	path := filepath.Join(base, "photo.jpg")
	if err := os.WriteFile(path, testJPEG, 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

func runCLI(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	ctx := newCommandContext()
	cmd := newRootCommand(ctx)
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := execute(cmd, ctx)
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, haystack, needle string) {
	t.Helper()
	if !strings.Contains(haystack, needle) {
		t.Fatalf("expected %q to contain %q", haystack, needle)
	}
}

func TestSetGetDelete(t *testing.T) {
	path := setupCLITest(t)

	steps := [][]string{
		{"set", path, "Exif.Image.Make", "Canon"},
		{"set", path, "Iptc.Application2.Keywords", "fjord", "winter"},
		{"set", "--array", path, "Xmp.dc.subject", "a", "b"},
		{"set", "--lang", "x-default", path, "Xmp.dc.title", "Harbour"},
	}
	for _, args := range steps {
		if _, _, err := runCLI(t, args...); err != nil {
			t.Fatalf("%v: %v", args, err)
		}
	}

	out, _, err := runCLI(t, "get", path, "Exif.Image.Make")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if strings.TrimSpace(out) != "Canon" {
		t.Errorf("get Make = %q, want Canon", out)
	}

	out, _, err = runCLI(t, "get", path, "Iptc.Application2.Keywords")
	if err != nil {
		t.Fatalf("get keywords: %v", err)
	}
	if out != "fjord\nwinter\n" {
		t.Errorf("get Keywords = %q", out)
	}

	out, _, err = runCLI(t, "keys", path)
	if err != nil {
		t.Fatalf("keys: %v", err)
	}
	requireContains(t, out, "Exif.Image.Make\tAscii\tCanon")
	requireContains(t, out, "Iptc.Application2.Keywords\tString\tfjord; winter")
	requireContains(t, out, "Xmp.dc.subject\tXmpBag\ta; b")
	requireContains(t, out, `Xmp.dc.title	LangAlt	lang="x-default" Harbour`)

	if _, _, err := runCLI(t, "delete", path, "Exif.Image.Make", "Xmp.dc.title"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	out, _, err = runCLI(t, "keys", "-n", "Exif,Xmp", path)
	if err != nil {
		t.Fatalf("keys after delete: %v", err)
	}
	if strings.Contains(out, "Exif.Image.Make") || strings.Contains(out, "Xmp.dc.title") {
		t.Errorf("deleted keys still listed:\n%s", out)
	}
	requireContains(t, out, "Xmp.dc.subject")
}

func TestGet_Errors(t *testing.T) {
	path := setupCLITest(t)

	if _, _, err := runCLI(t, "get", path, "Exif.Image.Make"); err == nil {
		t.Error("expected an error for a missing key")
	}
	_, _, err := runCLI(t, "get", path, "Bogus.Key")
	if err == nil {
		t.Fatal("expected an error for an unknown namespace")
	}
	requireContains(t, err.Error(), "Exif., Iptc. or Xmp.")

	if _, _, err := runCLI(t, "get", filepath.Join(t.TempDir(), "missing.jpg"), "Exif.Image.Make"); err == nil {
		t.Error("expected an error for a missing file")
	}
}

func TestComment(t *testing.T) {
	path := setupCLITest(t)

	if _, _, err := runCLI(t, "comment", "--set", "hello there", "--backup", ".bak", path); err != nil {
		t.Fatalf("comment --set: %v", err)
	}
	if _, err := os.Stat(path + ".bak"); err != nil {
		t.Errorf("backup missing: %v", err)
	}
	out, _, err := runCLI(t, "comment", path)
	if err != nil {
		t.Fatalf("comment: %v", err)
	}
	if out != "hello there\n" {
		t.Errorf("comment = %q", out)
	}

	if _, _, err := runCLI(t, "comment", "--set", "x", "--clear", path); err == nil {
		t.Error("expected --set with --clear to fail")
	}
}

func TestCopy(t *testing.T) {
	src := setupCLITest(t)
	dst := filepath.Join(t.TempDir(), "other.jpg")
	if err := os.WriteFile(dst, testJPEG, 0o644); err != nil {
		t.Fatalf("write target: %v", err)
	}

	if _, _, err := runCLI(t, "set", src, "Exif.Image.Artist", "Ada"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if _, _, err := runCLI(t, "set", src, "Xmp.xmp.Rating", "3"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if _, _, err := runCLI(t, "copy", "--xmp=false", src, dst); err != nil {
		t.Fatalf("copy: %v", err)
	}

	out, _, err := runCLI(t, "keys", dst)
	if err != nil {
		t.Fatalf("keys: %v", err)
	}
	requireContains(t, out, "Exif.Image.Artist")
	if strings.Contains(out, "Xmp.xmp.Rating") {
		t.Errorf("xmp copied despite --xmp=false:\n%s", out)
	}
}

func TestThumbnailAndPreviews(t *testing.T) {
	path := setupCLITest(t)
	thumbSrc := filepath.Join(t.TempDir(), "small.jpg")
	if err := os.WriteFile(thumbSrc, testJPEG, 0o644); err != nil {
		t.Fatalf("write thumbnail: %v", err)
	}

	if _, _, err := runCLI(t, "set", path, "Exif.Image.Make", "Canon"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if _, _, err := runCLI(t, "thumbnail", "--set", thumbSrc, path); err != nil {
		t.Fatalf("thumbnail --set: %v", err)
	}

	out, _, err := runCLI(t, "previews", path)
	if err != nil {
		t.Fatalf("previews: %v", err)
	}
	requireContains(t, out, "1\timage/jpeg\t32x16")

	out, stderr, err := runCLI(t, "previews", "--max-size", "10", path)
	if err != nil {
		t.Fatalf("previews --max-size: %v", err)
	}
	if strings.TrimSpace(out) != "" {
		t.Errorf("expected no previews, got %q", out)
	}
	requireContains(t, stderr, "warning:")

	dir := t.TempDir()
	out, _, err = runCLI(t, "thumbnail", "--extract", filepath.Join(dir, "thumb"), path)
	if err != nil {
		t.Fatalf("thumbnail --extract: %v", err)
	}
	data, err := os.ReadFile(strings.TrimSpace(out))
	if err != nil {
		t.Fatalf("read extracted thumbnail: %v", err)
	}
	if !bytes.Equal(data, testJPEG) {
		t.Error("extracted thumbnail differs from the one stored")
	}

	if _, _, err := runCLI(t, "thumbnail", "--erase", path); err != nil {
		t.Fatalf("thumbnail --erase: %v", err)
	}
	out, _, err = runCLI(t, "previews", path)
	if err != nil {
		t.Fatalf("previews: %v", err)
	}
	if strings.TrimSpace(out) != "" {
		t.Errorf("expected no previews after erase, got %q", out)
	}

	if _, _, err := runCLI(t, "thumbnail", path); err == nil {
		t.Error("expected an error without an action")
	}
}

func TestConfigFlag(t *testing.T) {
	path := setupCLITest(t)
	cfgPath := filepath.Join(t.TempDir(), "config.toml")
	cfg := "[write]\nbackup_suffix = \".orig\"\n\n[logging]\nlevel = \"error\"\n"
	if err := os.WriteFile(cfgPath, []byte(cfg), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if _, _, err := runCLI(t, "--config", cfgPath, "comment", "--set", "x", path); err != nil {
		t.Fatalf("comment --set: %v", err)
	}
	if _, err := os.Stat(path + ".orig"); err != nil {
		t.Errorf("configured backup missing: %v", err)
	}

	if err := os.WriteFile(cfgPath, []byte("[logging]\nformat = \"xml\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, _, err := runCLI(t, "--config", cfgPath, "comment", path); err == nil {
		t.Error("expected an invalid config to fail")
	}
}
