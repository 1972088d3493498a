// Copyright (c) 2026 GalleManga. All rights reserved.

package pdfpage

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"regexp"
	"strconv"
	"time"

	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// pdfinfoTimeout bounds the external tool for pathological files.
const pdfinfoTimeout = 20 * time.Second

// # Structural Parser

type parserMethod struct{}

// NewParserMethod counts pages by parsing the document structure with pdfcpu.
func NewParserMethod() Method {
	api.DisableConfigDir()
	return parserMethod{}
}

func (parserMethod) Name() string { return "pdfcpu" }

func (parserMethod) Count(_ context.Context, path string) (pages int, err error) {
	// pdfcpu can panic on badly broken cross-reference tables.
	defer func() {
		if recovered := recover(); recovered != nil {
			pages, err = 0, fmt.Errorf("parser panic: %v", recovered)
		}
	}()
	return api.PageCountFile(path)
}

// # External Tool

var pdfinfoPages = regexp.MustCompile(`(?m)^Pages:\s+(\d+)\s*$`)

type pdfinfoMethod struct {
	binary string
}

// NewPdfinfoMethod counts pages with poppler's pdfinfo. It reports an error
// when the tool is not on PATH.
func NewPdfinfoMethod() Method {
	binary, _ := exec.LookPath("pdfinfo")
	return pdfinfoMethod{binary: binary}
}

func (pdfinfoMethod) Name() string { return "pdfinfo" }

func (method pdfinfoMethod) Count(ctx context.Context, path string) (int, error) {
	if method.binary == "" {
		return 0, fmt.Errorf("pdfinfo not installed")
	}

	ctx, cancel := context.WithTimeout(ctx, pdfinfoTimeout)
	defer cancel()

	output, err := exec.CommandContext(ctx, method.binary, path).Output()
	if err != nil {
		return 0, fmt.Errorf("pdfinfo failed: %w", err)
	}

	return parsePdfinfo(output)
}

func parsePdfinfo(output []byte) (int, error) {
	match := pdfinfoPages.FindSubmatch(output)
	if match == nil {
		return 0, fmt.Errorf("pdfinfo output has no page count")
	}
	return strconv.Atoi(string(match[1]))
}

// # Raw Scan

// pageObject matches "/Type /Page" but not "/Type /Pages".
var pageObject = regexp.MustCompile(`/Type\s*/Page(?:[^s]|$)`)

type scanMethod struct{}

// NewScanMethod counts page objects directly in the file bytes.
func NewScanMethod() Method {
	return scanMethod{}
}

func (scanMethod) Name() string { return "scan" }

func (scanMethod) Count(_ context.Context, path string) (int, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	return CountPageObjects(content), nil
}

// CountPageObjects counts "/Type /Page" markers in raw PDF bytes.
func CountPageObjects(content []byte) int {
	if !bytes.HasPrefix(bytes.TrimLeft(content, "\x00\t\n\r "), []byte("%PDF")) {
		return 0
	}
	return len(pageObject.FindAllIndex(content, -1))
}
