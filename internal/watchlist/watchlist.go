// Package watchlist appends saved titles to plain-text files, one per line.
package watchlist

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/yu-a0/discovery-engine-suite/internal/fileutil"
	"github.com/yu-a0/discovery-engine-suite/internal/logging"
	"github.com/yu-a0/discovery-engine-suite/internal/services"
	"github.com/yu-a0/discovery-engine-suite/internal/textutil"
)

// unknownYear stands in for a missing release date.
const unknownYear = "????"

// List is an append-only watchlist file.
type List struct {
	path   string
	logger *slog.Logger
}

// New returns the watchlist stored at path. The file is created on first Add.
func New(path string, logger *slog.Logger) *List {
	return &List{
		path:   path,
		logger: logging.NewComponentLogger(logger, "watchlist"),
	}
}

// Path returns the backing file.
func (l *List) Path() string { return l.path }

// MovieLine formats a movie entry as "Title (YYYY)". Only the first four
// characters of year are used so a full release date may be passed.
func MovieLine(title, year string) string {
	year = strings.TrimSpace(year)
	if len(year) > 4 {
		year = year[:4]
	}
	if year == "" {
		year = unknownYear
	}
	return fmt.Sprintf("%s (%s)", cleanTitle(title), year)
}

// AnimeLine formats an anime entry, which is the title alone.
func AnimeLine(title string) string {
	return cleanTitle(title)
}

func cleanTitle(title string) string {
	return norm.NFC.String(textutil.SingleLine(title))
}

// Add appends line under the watchlist's file lock. Embedded newlines are
// collapsed so every save occupies exactly one line.
func (l *List) Add(ctx context.Context, line string) error {
	line = textutil.SingleLine(line)
	if line == "" {
		return services.Wrap(services.ErrValidation, "watchlist", "add", "empty entry", nil)
	}
	err := fileutil.WithLock(ctx, l.path, func() error {
		return fileutil.AppendLine(l.path, line)
	})
	if err != nil {
		return fmt.Errorf("append to %s: %w", l.path, err)
	}
	l.logger.Debug("saved watchlist entry",
		logging.String("path", l.path),
		logging.String("entry", line))
	return nil
}

// Entries returns the saved lines in file order, skipping blanks. A missing
// file is an empty watchlist.
func (l *List) Entries() ([]string, error) {
	file, err := os.Open(l.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open watchlist: %w", err)
	}
	defer file.Close()

	var entries []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			entries = append(entries, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read watchlist: %w", err)
	}
	return entries, nil
}
