package db

import (
	"strconv"
	"strings"
)

// Rebind rewrites '?' placeholders as $1..$n, numbering from start+1.
// Placeholders inside quoted literals, quoted identifiers and comments are left alone.
// It returns the rewritten SQL and the number of placeholders replaced.
func Rebind(sql string, start int) (string, int) {
	var b strings.Builder
	b.Grow(len(sql) + 8)

	n := start
	for i := 0; i < len(sql); i++ {
		c := sql[i]
		switch {
		case c == '\'' || c == '"':
			end := skipQuoted(sql, i, c)
			b.WriteString(sql[i:end])
			i = end - 1
		case c == '-' && i+1 < len(sql) && sql[i+1] == '-':
			end := strings.IndexByte(sql[i:], '\n')
			if end < 0 {
				end = len(sql) - i
			}
			b.WriteString(sql[i : i+end])
			i += end - 1
		case c == '/' && i+1 < len(sql) && sql[i+1] == '*':
			end := strings.Index(sql[i+2:], "*/")
			if end < 0 {
				b.WriteString(sql[i:])
				i = len(sql)
				continue
			}
			b.WriteString(sql[i : i+2+end+2])
			i += 2 + end + 1
		case c == '?':
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
		default:
			b.WriteByte(c)
		}
	}
	return b.String(), n - start
}

// skipQuoted returns the index just past the quoted run starting at i.
// A doubled quote inside the run is an escaped quote.
func skipQuoted(sql string, i int, q byte) int {
	j := i + 1
	for j < len(sql) {
		if sql[j] == q {
			if j+1 < len(sql) && sql[j+1] == q {
				j += 2
				continue
			}
			return j + 1
		}
		j++
	}
	return len(sql)
}
