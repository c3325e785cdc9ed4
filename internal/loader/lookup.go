package loader

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode"
	"unicode/utf8"
)

// ReadLookupCSV loads the loyalty-code reference table mapping codes to their
// human-readable descriptions. Descriptions are capitalized on load so report
// labels come out uniform regardless of how the source table was typed.
func ReadLookupCSV(path string) (map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open lookup file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read lookup header: %w", err)
	}
	codeIdx, descIdx := -1, -1
	for i, h := range header {
		switch strings.ToUpper(strings.TrimSpace(h)) {
		case "LOYAL_CODE":
			codeIdx = i
		case "TXN_DESC":
			descIdx = i
		}
	}
	if codeIdx < 0 || descIdx < 0 {
		return nil, fmt.Errorf("lookup file must have LOYAL_CODE and TXN_DESC columns")
	}

	lookup := make(map[string]string)
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read lookup row: %w", err)
		}
		if codeIdx >= len(row) || descIdx >= len(row) {
			continue
		}
		code := strings.TrimSpace(row[codeIdx])
		if code == "" {
			continue
		}
		lookup[code] = capitalize(strings.TrimSpace(row[descIdx]))
	}
	return lookup, nil
}

// capitalize upper-cases the first rune and lower-cases the rest.
func capitalize(s string) string {
	if s == "" {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + strings.ToLower(s[size:])
}
