package style

import (
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// licenseFiles are tried in this fixed order; the first file that yields an
// identification wins.
var licenseFiles = []string{"LICENSE", "LICENSE.txt", "LICENCE", "LICENCE.txt"}

// InferLicense locates a license file at the tree root and identifies it by
// its text. Absent or unreadable candidates are skipped; no identification
// yields an empty license value, never an error.
func InferLicense(root string) (Record, error) {
	for _, name := range licenseFiles {
		data, err := os.ReadFile(filepath.Join(root, name))
		if err != nil || !utf8.Valid(data) {
			continue
		}
		if license, ok := IdentifyLicense(string(data)); ok {
			return Record{"license": license}, nil
		}
	}
	return Record{"license": ""}, nil
}

// IdentifyLicense matches license text against well-known license markers
// and returns the SPDX-style name of the first match.
func IdentifyLicense(text string) (string, bool) {
	normalized := strings.Join(strings.Fields(text), " ")

	switch {
	case strings.Contains(normalized, "MIT License"),
		strings.Contains(normalized, "Permission is hereby granted, free of charge"):
		return "MIT", true

	case strings.Contains(normalized, "Apache License") && strings.Contains(normalized, "Version 2.0"):
		return "Apache-2.0", true

	case strings.Contains(normalized, "GNU LESSER GENERAL PUBLIC LICENSE"):
		if strings.Contains(normalized, "Version 3") {
			return "LGPL-3.0", true
		}
		return "LGPL-2.1", true

	case strings.Contains(normalized, "GNU GENERAL PUBLIC LICENSE"):
		if strings.Contains(normalized, "Version 3") {
			return "GPL-3.0", true
		}
		return "GPL-2.0", true

	case strings.Contains(normalized, "Redistribution and use in source and binary forms"):
		if strings.Contains(normalized, "Neither the name") {
			return "BSD-3-Clause", true
		}
		return "BSD-2-Clause", true

	case strings.Contains(normalized, "Mozilla Public License") && strings.Contains(normalized, "2.0"):
		return "MPL-2.0", true

	case strings.Contains(normalized, "ISC License"),
		strings.Contains(normalized, "Permission to use, copy, modify, and/or distribute"):
		return "ISC", true

	case strings.Contains(normalized, "This is free and unencumbered software"):
		return "Unlicense", true
	}

	return "", false
}
