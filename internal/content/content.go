// Package content classifies raw QR payload strings into typed content records.
// The classification drives both the detail section of exported documents and
// the content_type field recorded in export history.
package content

import (
	"net/url"
	"strings"
	"time"
)

// Type is the closed set of recognized QR payload classifications.
// Unrecognized input always degrades to TypeText.
type Type string

const (
	TypeEmail    Type = "email"
	TypeWiFi     Type = "wifi"
	TypePhone    Type = "phone"
	TypeSMS      Type = "sms"
	TypeURL      Type = "url"
	TypeVCard    Type = "vcard"
	TypeEvent    Type = "event"
	TypeLocation Type = "location"
	TypeText     Type = "text"
)

// AllTypes returns every recognized content type.
// The document layout engine registers one detail renderer per entry;
// keeping the two lists in sync is checked at init time.
func AllTypes() []Type {
	return []Type{
		TypeEmail,
		TypeWiFi,
		TypePhone,
		TypeSMS,
		TypeURL,
		TypeVCard,
		TypeEvent,
		TypeLocation,
		TypeText,
	}
}

// displayNames maps each content type to its human-readable label,
// used as the document subtitle and section heading.
var displayNames = map[Type]string{
	TypeEmail:    "Email",
	TypeWiFi:     "WiFi Network",
	TypePhone:    "Phone Number",
	TypeSMS:      "SMS Message",
	TypeURL:      "Website URL",
	TypeVCard:    "Contact Card",
	TypeEvent:    "Calendar Event",
	TypeLocation: "Location",
	TypeText:     "Plain Text",
}

// DisplayName returns the human-readable label for a content type.
func (t Type) DisplayName() string {
	if name, ok := displayNames[t]; ok {
		return name
	}
	return displayNames[TypeText]
}

// Valid reports whether t is a recognized content type.
func (t Type) Valid() bool {
	_, ok := displayNames[t]
	return ok
}

// ParsedContent is the result of classifying a raw QR payload.
// It is created fresh per export request and never persisted as-is.
type ParsedContent struct {
	Type        Type              `json:"type"`
	Data        map[string]string `json:"data"`
	DisplayName string            `json:"display_name"`
}

// Parse classifies rawText into a ParsedContent record. It never fails:
// input matching none of the recognized prefixes is returned as plain text
// with the original string under data["content"].
//
// Checks run in a fixed order; prefixes are disjoint so the first match wins.
func Parse(rawText string) ParsedContent {
	switch {
	case strings.HasPrefix(rawText, "mailto:"):
		return parseEmail(rawText)
	case strings.HasPrefix(rawText, "WIFI:"):
		return parseWiFi(rawText)
	case strings.HasPrefix(rawText, "tel:"):
		return parsePhone(rawText)
	case strings.HasPrefix(rawText, "sms:"):
		return parseSMS(rawText)
	case strings.HasPrefix(rawText, "http://"), strings.HasPrefix(rawText, "https://"):
		return parseURL(rawText)
	case strings.HasPrefix(rawText, "BEGIN:VCARD"):
		return parseVCard(rawText)
	case strings.HasPrefix(rawText, "BEGIN:VEVENT"):
		return parseEvent(rawText)
	case strings.HasPrefix(rawText, "geo:"):
		return parseLocation(rawText)
	default:
		return newContent(TypeText, map[string]string{"content": rawText})
	}
}

func newContent(t Type, data map[string]string) ParsedContent {
	return ParsedContent{
		Type:        t,
		Data:        data,
		DisplayName: t.DisplayName(),
	}
}

// parseEmail handles mailto: URIs with optional subject/body query parameters.
func parseEmail(rawText string) ParsedContent {
	data := map[string]string{}

	rest := strings.TrimPrefix(rawText, "mailto:")
	address := rest
	if idx := strings.Index(rest, "?"); idx >= 0 {
		address = rest[:idx]
		if params, err := url.ParseQuery(rest[idx+1:]); err == nil {
			if v := params.Get("subject"); v != "" {
				data["subject"] = v
			}
			if v := params.Get("body"); v != "" {
				data["body"] = v
			}
		}
	}
	data["email"] = address

	return newContent(TypeEmail, data)
}

// parseWiFi handles WIFI:T:<security>;S:<ssid>;P:<password>;H:<hidden>;; payloads.
func parseWiFi(rawText string) ParsedContent {
	data := map[string]string{}

	rest := strings.TrimPrefix(rawText, "WIFI:")
	for _, part := range strings.Split(rest, ";") {
		if part == "" {
			continue
		}
		kv := strings.SplitN(part, ":", 2)
		if len(kv) != 2 {
			continue
		}
		switch kv[0] {
		case "T":
			data["security"] = kv[1]
		case "S":
			data["ssid"] = kv[1]
		case "P":
			data["password"] = kv[1]
		case "H":
			data["hidden"] = kv[1]
		}
	}

	return newContent(TypeWiFi, data)
}

func parsePhone(rawText string) ParsedContent {
	return newContent(TypePhone, map[string]string{
		"phone": strings.TrimPrefix(rawText, "tel:"),
	})
}

// parseSMS handles sms:<number>?body=<message>, falling back to a bare number
// when no query string is present.
func parseSMS(rawText string) ParsedContent {
	data := map[string]string{}

	rest := strings.TrimPrefix(rawText, "sms:")
	number := rest
	if idx := strings.Index(rest, "?"); idx >= 0 {
		number = rest[:idx]
		if params, err := url.ParseQuery(rest[idx+1:]); err == nil {
			if v := params.Get("body"); v != "" {
				data["message"] = v
			}
		}
	}
	data["phone"] = number

	return newContent(TypeSMS, data)
}

// parseURL handles http(s) URLs, degrading to the raw string when parsing fails.
func parseURL(rawText string) ParsedContent {
	data := map[string]string{"url": rawText}

	if u, err := url.Parse(rawText); err == nil && u.Host != "" {
		data["domain"] = u.Hostname()
		data["protocol"] = u.Scheme
	}

	return newContent(TypeURL, data)
}

// vcardFields maps vCard property names to output field names.
var vcardFields = map[string]string{
	"FN":    "name",
	"TEL":   "phone",
	"EMAIL": "email",
	"ORG":   "organization",
	"TITLE": "title",
	"URL":   "website",
}

// parseVCard handles BEGIN:VCARD blocks line by line. Property parameters
// (e.g. TEL;TYPE=CELL) are ignored; the first occurrence of a field wins.
func parseVCard(rawText string) ParsedContent {
	data := map[string]string{}

	for _, line := range splitLines(rawText) {
		kv := strings.SplitN(line, ":", 2)
		if len(kv) != 2 {
			continue
		}
		key := kv[0]
		// Strip property parameters: TEL;TYPE=CELL -> TEL
		if idx := strings.Index(key, ";"); idx >= 0 {
			key = key[:idx]
		}
		field, ok := vcardFields[strings.ToUpper(key)]
		if !ok {
			continue
		}
		if _, exists := data[field]; !exists && kv[1] != "" {
			data[field] = kv[1]
		}
	}

	return newContent(TypeVCard, data)
}

// parseEvent handles BEGIN:VEVENT blocks, reformatting DTSTART from the
// compact ISO-basic form to a readable date string.
func parseEvent(rawText string) ParsedContent {
	data := map[string]string{}

	for _, line := range splitLines(rawText) {
		kv := strings.SplitN(line, ":", 2)
		if len(kv) != 2 {
			continue
		}
		switch strings.ToUpper(kv[0]) {
		case "SUMMARY":
			data["summary"] = kv[1]
		case "DTSTART":
			data["start"] = formatEventDate(kv[1])
		case "LOCATION":
			data["location"] = kv[1]
		case "DESCRIPTION":
			data["description"] = kv[1]
		}
	}

	return newContent(TypeEvent, data)
}

// formatEventDate converts compact ISO-basic timestamps (20240115T090000Z)
// to a readable form. Values that do not parse are passed through unchanged.
func formatEventDate(value string) string {
	layouts := []string{
		"20060102T150405Z",
		"20060102T150405",
		"20060102",
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, value); err == nil {
			if layout == "20060102" {
				return t.Format("January 2, 2006")
			}
			return t.Format("January 2, 2006 15:04")
		}
	}
	return value
}

// parseLocation handles geo:<lat>,<lng>?q=<address> URIs.
func parseLocation(rawText string) ParsedContent {
	data := map[string]string{}

	rest := strings.TrimPrefix(rawText, "geo:")
	coords := rest
	if idx := strings.Index(rest, "?"); idx >= 0 {
		coords = rest[:idx]
		if params, err := url.ParseQuery(rest[idx+1:]); err == nil {
			if v := params.Get("q"); v != "" {
				data["address"] = v
			}
		}
	}
	if coords != "" {
		data["coordinates"] = coords
	}

	return newContent(TypeLocation, data)
}

// splitLines splits on both CRLF and LF line endings.
func splitLines(s string) []string {
	return strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n")
}
