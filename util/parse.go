package util

import (
	"net/http"
	"strconv"
	"strings"
)

// ParseLocationIds splits a comma separated id list, dropping blanks and duplicates.
func ParseLocationIds(val string) []string {
	ids := []string{}
	seen := make(map[string]bool)
	for _, id := range strings.Split(val, ",") {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	return ids
}

func ParseBoolQuery(val string) (bool, *HTTPError) {
	if val == "" {
		return false, nil
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return false, &HTTPError{Status: http.StatusBadRequest, Message: "expected a boolean, got " + strconv.Quote(val)}
	}
	return parsed, nil
}

func ParseId(val string) (string, *HTTPError) {
	val = strings.TrimSpace(val)
	if val == "" || strings.Contains(val, "/") {
		httpErr := MalformedIdHTTPErr
		return "", &httpErr
	}
	return val, nil
}
