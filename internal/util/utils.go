package util

import "strconv"

const (
	DefaultPageSize = 20
	maxPageSize     = 100
)

func ParseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if v, err := strconv.Atoi(s); err == nil {
		return v
	}
	return def
}

// Calculate turns 1-based page/size values into an offset/limit pair.
func Calculate(page, size int) (offset, limit int) {
	if page < 1 {
		page = 1
	}
	if size < 1 || size > maxPageSize {
		size = DefaultPageSize
	}

	offset = (page - 1) * size
	return offset, size
}
