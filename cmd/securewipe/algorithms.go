package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"securewipe/internal/wipe"
)

type algorithmInfo struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Passes  int      `json:"passes"` // 0 для custom: задаётся флагом -p
	Labels  []string `json:"labels,omitempty"`
	Summary string   `json:"summary"`
}

func newAlgorithmsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "algorithms",
		Short: "Показать доступные алгоритмы затирания",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return printAlgorithms(cmd.OutOrStdout(), jsonOutput)
		},
	}
}

func listAlgorithms() []algorithmInfo {
	var out []algorithmInfo
	for _, m := range wipe.Methods() {
		a := wipe.Algorithm{Method: m}
		info := algorithmInfo{ID: a.ID(), Name: a.String(), Summary: a.Summary()}
		if n, err := a.PassCount(); err == nil {
			info.Passes = n
			seen := map[string]bool{}
			for pass := 1; pass <= n; pass++ {
				label, _ := a.LabelFor(pass)
				if !seen[label] {
					seen[label] = true
					info.Labels = append(info.Labels, label)
				}
			}
		}
		out = append(out, info)
	}
	return out
}

func printAlgorithms(w io.Writer, asJSON bool) error {
	algs := listAlgorithms()
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(algs)
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ID", "NAME", "PASSES", "PATTERNS", "DESCRIPTION")
	for _, a := range algs {
		passes := "N"
		if a.Passes > 0 {
			passes = strconv.Itoa(a.Passes)
		}
		labels := strings.Join(a.Labels, ",")
		if labels == "" {
			labels = "RAND"
		}
		t.Row(a.ID, a.Name, passes, labels, a.Summary)
	}
	_, err := fmt.Fprintln(w, t.Render())
	return err
}
