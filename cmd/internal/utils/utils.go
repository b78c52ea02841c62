package utils

import (
	"reflect"
	"regexp"
	"strings"
	"time"
)

// MaxFieldLength bounds every free-text value placed into an outbound message.
const MaxFieldLength = 240

var lineBreaks = regexp.MustCompile(`[\r\n]+`)

func FormatEpoch(millis int64) string {
	return time.UnixMilli(millis).
		UTC().
		Format(time.RFC3339)
}

func NowUTC() int64 {
	return time.Now().
		UTC().
		UnixMilli()
}

// SanitizeLine makes s safe to interpolate into a single message line:
// line breaks collapse into one space, then the result is trimmed and cut
// to MaxFieldLength characters.
func SanitizeLine(s string) string {
	s = lineBreaks.ReplaceAllString(s, " ")
	s = strings.TrimSpace(s)
	return truncate(s, MaxFieldLength)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	count := 0
	for i := range s {
		if count == max {
			return s[:i]
		}
		count++
	}
	return s
}

// Sanitize trims every string (and []string) field of the struct o points to.
func Sanitize(o any) {
	v := reflect.ValueOf(o)
	if v.Kind() != reflect.Ptr || v.IsNil() {
		panic("sanitize: expected pointer to struct")
	}

	v = v.Elem()
	if v.Kind() != reflect.Struct {
		panic("sanitize: expected struct")
	}

	for i := 0; i < v.NumField(); i++ {
		field := v.Field(i)
		if !field.CanSet() {
			continue
		}
		switch field.Kind() {
		case reflect.String:
			field.SetString(sanitizeString(field.String()))

		case reflect.Slice:
			if field.Type().Elem().Kind() == reflect.String {
				for j := 0; j < field.Len(); j++ {
					field.Index(j).SetString(sanitizeString(field.Index(j).String()))
				}
			}
		}
	}
}

func sanitizeString(s string) string {
	return strings.TrimSpace(s)
}
