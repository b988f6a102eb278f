// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package csvimport parses bulk user import files. The expected format is
// one header row followed by "email,username,name[,password]" rows.
package csvimport

import (
	"bufio"
	"fmt"
	"io"
	"math/rand"
	"strings"
)

// Entry is one parsed user row from an import file.
type Entry struct {
	Email    string
	Username string
	Name     string
	Password string
}

// ParseUsers reads a CSV payload and returns the user entries. The first
// line is treated as a header and skipped. Rows with fewer than three
// fields are silently dropped; a missing password gets a generated
// placeholder the operator is expected to rotate.
func ParseUsers(r io.Reader) ([]Entry, error) {
	scanner := bufio.NewScanner(r)

	var entries []Entry
	first := true
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if first {
			first = false
			continue
		}
		if line == "" {
			continue
		}

		fields := strings.Split(line, ",")
		if len(fields) < 3 {
			continue
		}

		e := Entry{
			Email:    strings.TrimSpace(fields[0]),
			Username: strings.TrimSpace(fields[1]),
			Name:     strings.TrimSpace(fields[2]),
		}
		if len(fields) > 3 {
			e.Password = strings.TrimSpace(fields[3])
		}
		if e.Password == "" {
			e.Password = placeholderPassword(e.Email)
		}

		entries = append(entries, e)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read import file: %w", err)
	}
	return entries, nil
}

// placeholderPassword derives a temporary password from the email's local
// part plus a random suffix.
func placeholderPassword(email string) string {
	local := email
	if idx := strings.IndexByte(email, '@'); idx != -1 {
		local = email[:idx]
	}
	return fmt.Sprintf("%s%04d!", local, rand.Intn(10000))
}
