package sheets

import "strings"

// ColumnLetter converts a zero-based column index to its A1 letter form
// (0 -> A, 25 -> Z, 26 -> AA).
func ColumnLetter(index int) string {
	var b []byte
	for index >= 0 {
		b = append([]byte{byte('A' + index%26)}, b...)
		index = index/26 - 1
	}
	return string(b)
}

// FindTargetColumn locates target among the headers by case-insensitive
// exact match. When absent, it returns the letter of the next free column
// after the existing headers and found=false so the caller can append the
// header there.
func FindTargetColumn(headers []string, target string) (letter string, found bool) {
	want := strings.ToLower(target)
	for i, header := range headers {
		if strings.ToLower(header) == want {
			return ColumnLetter(i), true
		}
	}
	return ColumnLetter(len(headers)), false
}
