package prescription

import (
	"regexp"
	"strconv"
	"strings"
)

// The parser is deliberately best-effort: prescription text arrives as
// unstructured OCR output or as the labeled transcription the vision
// prompt asks for, and a line that matches nothing is simply skipped.
// ParsePrescription never fails; the worst case is a record with no
// items and the raw text preserved.

var (
	listMarkerRe  = regexp.MustCompile(`^\s*(?:[-*•]|\d+[.)])\s+`)
	dosageRe      = regexp.MustCompile(`(?i)\b\d+(?:\.\d+)?\s?(?:mg|mcg|g|ml|iu|units?)\b`)
	qtyRe         = regexp.MustCompile(`(?i)\b(?:qty|quantity)\.?\s*[:#]?\s*(\d+)\b`)
	trailingQtyRe = regexp.MustCompile(`\s(?:#|x\s?)?(\d+)\s*$`)
	nameRe        = regexp.MustCompile(`^[A-Za-z][A-Za-z'\-]*(?:\s+[A-Za-z][A-Za-z'\-]*){0,3}$`)
	drPrefixRe    = regexp.MustCompile(`(?i)^dr\.?\s+`)
)

// instruction openers that would otherwise look like medicine names
var instructionWords = map[string]bool{
	"take":    true,
	"apply":   true,
	"use":     true,
	"avoid":   true,
	"refill":  true,
	"refills": true,
	"sig":     true,
	"total":   true,
	"date":    true,
	"age":     true,
	"address": true,
	"phone":   true,
	"signature": true,
}

// labeledField is one "Key: value" matcher. Matchers run in a fixed
// priority order and a label match always wins over the line-item
// heuristic for the same line.
type labeledField struct {
	keyword string
	apply   func(rec *Record, value string)
}

var labeledFields = []labeledField{
	{"patient", func(rec *Record, value string) {
		if rec.PatientName == "" {
			rec.PatientName = value
		}
	}},
	{"doctor", func(rec *Record, value string) {
		if rec.DoctorName == "" {
			rec.DoctorName = stripDoctorPrefix(value)
		}
	}},
	{"medicine", func(rec *Record, value string) {
		if item, ok := parseLineItem(value); ok {
			rec.Items = append(rec.Items, item)
		}
	}},
	{"drug", func(rec *Record, value string) {
		if item, ok := parseLineItem(value); ok {
			rec.Items = append(rec.Items, item)
		}
	}},
	{"dosage", func(rec *Record, value string) {
		if n := len(rec.Items); n > 0 && rec.Items[n-1].Dosage == "" {
			rec.Items[n-1].Dosage = value
		}
	}},
	{"dose", func(rec *Record, value string) {
		if n := len(rec.Items); n > 0 && rec.Items[n-1].Dosage == "" {
			rec.Items[n-1].Dosage = value
		}
	}},
	{"quantity", func(rec *Record, value string) {
		if n := len(rec.Items); n > 0 && rec.Items[n-1].Quantity == 0 {
			if qty, err := strconv.Atoi(strings.TrimSpace(value)); err == nil && qty > 0 {
				rec.Items[n-1].Quantity = qty
			}
		}
	}},
	// Recognized but deliberately dropped: keeps instruction lines from
	// being mistaken for medicine names
	{"instructions", func(rec *Record, value string) {}},
}

// ParsePrescription turns raw extracted text into a structured record.
// It never fails; unparseable lines are skipped and the raw text is
// always retained.
func ParsePrescription(text string) Record {
	rec := Record{
		Items:   []LineItem{},
		RawText: text,
	}

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if matchLabeledLine(&rec, line) {
			continue
		}

		// Bare "Dr. Smith" lines carry the doctor name without a label
		if drPrefixRe.MatchString(line) {
			if rec.DoctorName == "" {
				rec.DoctorName = stripDoctorPrefix(line)
			}
			continue
		}

		if item, ok := parseLineItem(line); ok {
			rec.Items = append(rec.Items, item)
		}
	}

	return rec
}

// matchLabeledLine applies the first labeled-field matcher whose keyword
// appears in the line's key. It reports whether the line was consumed,
// which includes labeled lines with placeholder or unknown keys.
func matchLabeledLine(rec *Record, line string) bool {
	key, value, found := strings.Cut(line, ":")
	if !found {
		return false
	}
	key = strings.ToLower(strings.TrimSpace(key))
	value = strings.TrimSpace(value)

	// Keys are short; a colon deep inside a sentence is not a label
	if key == "" || len(strings.Fields(key)) > 3 {
		return false
	}

	for _, field := range labeledFields {
		if strings.Contains(key, field.keyword) {
			if value != "" && !isPlaceholder(value) {
				field.apply(rec, value)
			}
			return true
		}
	}

	// A labeled line we do not understand is ignored, not treated as a
	// medicine line
	return true
}

// isPlaceholder reports whether the value is the prompt template echoed
// back for an unreadable field.
func isPlaceholder(value string) bool {
	lower := strings.ToLower(value)
	return lower == "not found" || lower == "n/a" ||
		(strings.HasPrefix(value, "[") && strings.HasSuffix(value, "]"))
}

// stripDoctorPrefix removes a leading "Dr."/"Dr" title from a name.
func stripDoctorPrefix(name string) string {
	return strings.TrimSpace(drPrefixRe.ReplaceAllString(strings.TrimSpace(name), ""))
}

// parseLineItem applies the free-text medicine heuristic: a name token
// run, optionally followed by a dosage ("500 mg") and/or a quantity
// ("qty 2", "#2", or a trailing bare integer). Lines that do not shape
// up as a medicine are rejected, not errors.
func parseLineItem(line string) (LineItem, bool) {
	line = listMarkerRe.ReplaceAllString(line, "")
	line = strings.TrimSpace(line)
	if line == "" {
		return LineItem{}, false
	}

	var item LineItem
	nameEnd := len(line)

	if loc := dosageRe.FindStringIndex(line); loc != nil {
		item.Dosage = line[loc[0]:loc[1]]
		if loc[0] < nameEnd {
			nameEnd = loc[0]
		}
	}

	if m := qtyRe.FindStringSubmatchIndex(line); m != nil {
		if qty, err := strconv.Atoi(line[m[2]:m[3]]); err == nil && qty > 0 {
			item.Quantity = qty
		}
		if m[0] < nameEnd {
			nameEnd = m[0]
		}
	} else if m := trailingQtyRe.FindStringSubmatchIndex(line); m != nil && m[0] >= nameEnd {
		// Only a number after the dosage counts; a digit inside the name
		// region is not a quantity
		if qty, err := strconv.Atoi(line[m[2]:m[3]]); err == nil && qty > 0 {
			item.Quantity = qty
		}
	}

	name := strings.Trim(line[:nameEnd], " \t-–:,.")
	if !nameRe.MatchString(name) {
		return LineItem{}, false
	}
	if instructionWords[strings.ToLower(strings.Fields(name)[0])] {
		return LineItem{}, false
	}

	item.Name = name
	return item, true
}
