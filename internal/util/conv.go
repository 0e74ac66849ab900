package util

import (
	"strconv"
	"strings"
)

// MustParseUint 将字符串转换为无符号整数，解析失败时返回 0
func MustParseUint(s string) uint {
	id, _ := strconv.ParseUint(strings.TrimSpace(s), 10, 32)
	return uint(id)
}

// ParseIntOrZero 解析整数前缀，失败时返回 0
func ParseIntOrZero(s string) int {
	s = strings.TrimSpace(s)
	end := 0
	for end < len(s) {
		ch := s[end]
		if (ch == '-' || ch == '+') && end == 0 {
			end++
			continue
		}
		if ch < '0' || ch > '9' {
			break
		}
		end++
	}
	v, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0
	}
	return v
}
