package main

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
)

func humanBytes(v int64) string {
	const unit = 1024
	if v < unit {
		return fmt.Sprintf("%d B", v)
	}
	div := int64(unit)
	exp := 0
	for n := v / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	value := float64(v) / float64(div)
	return fmt.Sprintf("%.1f %ciB", value, "KMGTPEZY"[exp])
}

func decodeDataURL(url string) ([]byte, error) {
	const marker = ";base64,"
	idx := strings.Index(url, marker)
	if idx < 0 {
		return nil, errors.New("not a base64 data URL")
	}
	return base64.StdEncoding.DecodeString(url[idx+len(marker):])
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
