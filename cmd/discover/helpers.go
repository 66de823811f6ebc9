package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/browser"
	"github.com/spf13/cobra"

	"github.com/yu-a0/discovery-engine-suite/internal/services"
)

const titleWidth = 38

// openURL is swapped out in tests.
var openURL = func(cmd *cobra.Command, url string) error {
	browser.Stdout = cmd.ErrOrStderr()
	browser.Stderr = cmd.ErrOrStderr()
	return browser.OpenURL(url)
}

// selectionFlags are the follow-up actions a listing accepts. Indices are
// 1-based positions in the printed list; 0 means unset.
type selectionFlags struct {
	details int
	save    int
	open    int
	json    bool
}

func (s *selectionFlags) register(cmd *cobra.Command, openHelp string) {
	cmd.Flags().IntVar(&s.details, "details", 0, "Show details for list entry N")
	cmd.Flags().IntVar(&s.save, "save", 0, "Append list entry N to the watchlist")
	cmd.Flags().IntVar(&s.open, "open", 0, openHelp)
	cmd.Flags().BoolVar(&s.json, "json", false, "Emit JSON instead of a table")
}

func (s selectionFlags) validate() error {
	for name, value := range map[string]int{"details": s.details, "save": s.save, "open": s.open} {
		if value < 0 {
			return services.Wrap(services.ErrInvalidSelection, "cli", "--"+name, fmt.Sprintf("%d is not a list position", value), nil)
		}
	}
	return nil
}

// detailIndex is the entry whose details are needed, if any.
func (s selectionFlags) detailIndex() int {
	if s.details > 0 {
		return s.details
	}
	return s.open
}

// handleNoResults reports an empty result set on stdout and clears the
// error; anything else passes through.
func handleNoResults(cmd *cobra.Command, err error) error {
	if !errors.Is(err, services.ErrNoResults) {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "No matches found.")
	return nil
}

func yearOrUnknown(year string) string {
	if year == "" {
		return "????"
	}
	return year
}

func formatRating(value float64, scale int) string {
	return strconv.FormatFloat(value, 'f', -1, 64) + "/" + strconv.Itoa(scale)
}

func joinArgs(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}
