package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/ctjandra/ddopt-cut/problem/indepset"
)

// readDIMACS parses a DIMACS edge-list graph file (spec.md §6 "File
// formats"): a "p edge V E" header followed by "e u v" lines, 1-indexed
// per the DIMACS convention and converted to 0-indexed here.
func readDIMACS(path string) (*indepset.Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var g *indepset.Graph
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "c") {
			continue
		}
		fields := strings.Fields(line)
		switch fields[0] {
		case "p":
			if len(fields) < 3 || fields[1] != "edge" {
				return nil, fmt.Errorf("dimacs: unsupported problem line %q", line)
			}
			n, err := strconv.Atoi(fields[2])
			if err != nil {
				return nil, fmt.Errorf("dimacs: bad vertex count: %w", err)
			}
			g = indepset.NewGraph(n)
		case "e":
			if g == nil {
				return nil, fmt.Errorf("dimacs: edge line before problem line")
			}
			if len(fields) < 3 {
				return nil, fmt.Errorf("dimacs: malformed edge line %q", line)
			}
			u, err := strconv.Atoi(fields[1])
			if err != nil {
				return nil, fmt.Errorf("dimacs: bad edge endpoint: %w", err)
			}
			v, err := strconv.Atoi(fields[2])
			if err != nil {
				return nil, fmt.Errorf("dimacs: bad edge endpoint: %w", err)
			}
			g.AddEdge(u-1, v-1)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if g == nil {
		return nil, fmt.Errorf("dimacs: missing problem line")
	}
	return g, nil
}
