// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package slug normalizes arbitrary strings into URL-friendly slugs.
package slug

import "strings"

// Generate lowercases s and reduces it to [a-z0-9-], folding whitespace
// runs into single hyphens. Example: "Hello, World! 2026" → "hello-world-2026".
func Generate(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	lastHyphen := true // suppress a leading hyphen
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		case r == ' ', r == '\t', r == '\n', r == '-':
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}

	return strings.TrimSuffix(b.String(), "-")
}

// Valid reports whether s is already a well-formed slug. Page slugs and
// usernames arrive from client input and must be checked before they reach
// a URL or a storage key.
func Valid(s string) bool {
	return s != "" && Generate(s) == s
}
