package main

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// readEmails returns the values of column, trimmed, skipping blank cells.
// A file without a matching header is read as a single column of addresses.
func readEmails(r io.Reader, column string) ([]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	index := -1
	for i, h := range header {
		if strings.EqualFold(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")), column) {
			index = i
			break
		}
	}

	var emails []string
	add := func(value string) {
		if v := strings.TrimSpace(value); v != "" {
			emails = append(emails, v)
		}
	}

	if index == -1 {
		// headerless: first row is data
		index = 0
		add(strings.TrimPrefix(header[0], "\ufeff"))
	}

	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		if index < len(row) {
			add(row[index])
		}
	}
	return emails, nil
}
