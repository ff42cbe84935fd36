package util

import (
	"math"
	"strconv"
)

const (
	DefaultPageSize = 12
	MaxPageSize     = 100
	// MaxPage keeps (page-1)*MaxPageSize inside int on every platform.
	MaxPage = math.MaxInt32 / MaxPageSize
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

// Normalize clamps page to 1..MaxPage and size to 1..MaxPageSize, defaulting a missing size.
func Normalize(page, size int) (int, int) {
	if page < 1 {
		page = 1
	}
	if page > MaxPage {
		page = MaxPage
	}
	if size <= 0 {
		size = DefaultPageSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}
	return page, size
}

func Calculate(page, size int) (offset, limit int) {
	page, size = Normalize(page, size)
	return (page - 1) * size, size
}

func Pages(total int64, size int) int64 {
	if size <= 0 {
		return 0
	}
	return (total + int64(size) - 1) / int64(size)
}
