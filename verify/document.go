package verify

import (
	"strconv"
	"strings"
	"time"

	"github.com/digitorus/pdf"
)

// parseDocumentInfo reads the PDF Info dictionary into documentInfo. Each
// field is handled explicitly rather than matched to the dictionary key by
// reflection, so a malformed or unexpected Info entry can never panic.
func parseDocumentInfo(v pdf.Value, documentInfo *DocumentInfo) {
	str := func(key string) (string, bool) {
		value := v.Key(key)
		if value.IsNull() {
			return "", false
		}
		return value.Text(), true
	}

	if s, ok := str("Author"); ok {
		documentInfo.Author = s
	}
	if s, ok := str("Creator"); ok {
		documentInfo.Creator = s
	}
	if s, ok := str("Hash"); ok {
		documentInfo.Hash = s
	}
	if s, ok := str("Name"); ok {
		documentInfo.Name = s
	}
	if s, ok := str("Permission"); ok {
		documentInfo.Permission = s
	}
	if s, ok := str("Producer"); ok {
		documentInfo.Producer = s
	}
	if s, ok := str("Subject"); ok {
		documentInfo.Subject = s
	}
	if s, ok := str("Title"); ok {
		documentInfo.Title = s
	}
	if s, ok := str("CreationDate"); ok {
		if t, err := parseDate(s); err == nil {
			documentInfo.CreationDate = t
		}
	}
	if s, ok := str("ModDate"); ok {
		if t, err := parseDate(s); err == nil {
			documentInfo.ModDate = t
		}
	}
	if s, ok := str("Pages"); ok {
		if i, err := strconv.Atoi(s); err == nil {
			documentInfo.Pages = i
		}
	}
	if s, ok := str("Keywords"); ok {
		documentInfo.Keywords = parseKeywords(s)
	}
}

// parseDate parses PDF formatted dates.
func parseDate(v string) (time.Time, error) {
	// PDF Date Format
	// (D:YYYYMMDDHHmmSSOHH'mm')
	//
	// where
	//
	// YYYY is the year
	// MM is the month
	// DD is the day (01-31)
	// HH is the hour (00-23)
	// mm is the minute (00-59)
	// SS is the second (00-59)
	// O is the relationship of local time to Universal Time (UT), denoted by one of the characters +, -, or Z (see below)
	// HH followed by ' is the absolute value of the offset from UT in hours (00-23)
	// mm followed by ' is the absolute value of the offset from UT in minutes (00-59)

	// 2006-01-02T15:04:05Z07:00
	// (D:YYYYMMDDHHmmSSOHH'mm')
	return time.Parse("D:20060102150405Z07'00'", v)
}

// parseKeywords parses keywords PDF metadata.
func parseKeywords(value string) []string {
	// keywords must be separated by commas or semicolons or could be just separated with spaces, after the semicolon could be a space
	// https://stackoverflow.com/questions/44608608/the-separator-between-keywords-in-pdf-meta-data
	separators := []string{", ", ": ", ",", ":", " ", "; ", ";", " ;"}
	for _, s := range separators {
		if strings.Contains(value, s) {
			return strings.Split(value, s)
		}
	}

	return []string{value}
}
