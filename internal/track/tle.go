package track

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
)

// TLE is a two-line element set, optionally with a name line.
type TLE struct {
	Name  string
	Line1 string
	Line2 string
}

// ParseTLE accepts two or three lines (a name line followed by the element
// lines) and validates line numbers, lengths, and checksums.
func ParseTLE(lines []string) (TLE, error) {
	var t TLE
	switch len(lines) {
	case 2:
		t.Line1, t.Line2 = strings.TrimRight(lines[0], "\r\n "), strings.TrimRight(lines[1], "\r\n ")
	case 3:
		t.Name = strings.TrimSpace(lines[0])
		t.Line1, t.Line2 = strings.TrimRight(lines[1], "\r\n "), strings.TrimRight(lines[2], "\r\n ")
	default:
		return TLE{}, fmt.Errorf("expected 2 or 3 TLE lines, got %d", len(lines))
	}

	if err := validateElementLine(1, t.Line1); err != nil {
		return TLE{}, err
	}
	if err := validateElementLine(2, t.Line2); err != nil {
		return TLE{}, err
	}
	if c1, c2 := t.Line1[2:7], t.Line2[2:7]; c1 != c2 {
		return TLE{}, fmt.Errorf("catalog number mismatch between lines: %q vs %q", c1, c2)
	}
	if t.Name == "" {
		t.Name = strings.TrimSpace(t.Line1[2:7])
	}
	return t, nil
}

// CatalogNumber returns the NORAD catalog number field of the element set.
func (t TLE) CatalogNumber() string {
	if len(t.Line1) < 7 {
		return ""
	}
	return strings.TrimSpace(t.Line1[2:7])
}

func validateElementLine(n int, line string) error {
	if len(line) != 69 {
		return fmt.Errorf("TLE line %d: expected 69 characters, got %d", n, len(line))
	}
	if int(line[0]-'0') != n || line[1] != ' ' {
		return fmt.Errorf("TLE line %d: bad line number prefix %q", n, line[:2])
	}
	want := int(line[68] - '0')
	if got := tleChecksum(line[:68]); got != want {
		return fmt.Errorf("TLE line %d: checksum %d, want %d", n, got, want)
	}
	return nil
}

// tleChecksum is the standard TLE mod-10 checksum: digits count as their
// value, minus signs count as 1, everything else as 0.
func tleChecksum(s string) int {
	sum := 0
	for _, c := range s {
		switch {
		case c >= '0' && c <= '9':
			sum += int(c - '0')
		case c == '-':
			sum++
		}
	}
	return sum % 10
}

// LoadTLEFile reads an element set from a text file (2 or 3 lines).
func LoadTLEFile(path string) (TLE, error) {
	f, err := os.Open(path)
	if err != nil {
		return TLE{}, fmt.Errorf("open TLE file: %w", err)
	}
	defer f.Close()

	lines, err := readLines(f, 3)
	if err != nil {
		return TLE{}, fmt.Errorf("read TLE file %q: %w", path, err)
	}
	t, err := ParseTLE(lines)
	if err != nil {
		return TLE{}, fmt.Errorf("parse TLE file %q: %w", path, err)
	}
	return t, nil
}

// Save writes the element set (name line included) to path.
func (t TLE) Save(path string) error {
	data := t.Name + "\n" + t.Line1 + "\n" + t.Line2 + "\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		return fmt.Errorf("save TLE: %w", err)
	}
	return nil
}

func readLines(r io.Reader, max int) ([]string, error) {
	var lines []string
	sc := bufio.NewScanner(r)
	for sc.Scan() && len(lines) < max {
		line := strings.TrimRight(sc.Text(), "\r ")
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, line)
	}
	return lines, sc.Err()
}

// DefaultTLEBaseURL serves current element sets by catalog number.
const DefaultTLEBaseURL = "https://celestrak.org/NORAD/elements/gp.php"

// TLEFetcher retrieves element sets from an HTTP source.
type TLEFetcher struct {
	BaseURL string
	Client  *http.Client
}

// Fetch retrieves the element set for the given catalog number.
func (f *TLEFetcher) Fetch(ctx context.Context, catalogNumber string) (TLE, error) {
	base := f.BaseURL
	if base == "" {
		base = DefaultTLEBaseURL
	}
	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}

	u, err := url.Parse(base)
	if err != nil {
		return TLE{}, fmt.Errorf("parse TLE source URL: %w", err)
	}
	q := u.Query()
	q.Set("CATNR", catalogNumber)
	q.Set("FORMAT", "TLE")
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return TLE{}, fmt.Errorf("build TLE request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return TLE{}, fmt.Errorf("fetch TLE %s: %w", catalogNumber, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return TLE{}, fmt.Errorf("fetch TLE %s: unexpected status %s", catalogNumber, resp.Status)
	}

	lines, err := readLines(resp.Body, 3)
	if err != nil {
		return TLE{}, fmt.Errorf("read TLE response: %w", err)
	}
	t, err := ParseTLE(lines)
	if err != nil {
		return TLE{}, fmt.Errorf("parse fetched TLE %s: %w", catalogNumber, err)
	}
	return t, nil
}
