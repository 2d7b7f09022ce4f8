package utils

// SnippetLength 列表页正文预览的截断长度（按字符数，不是字节数）
const SnippetLength = 300

// Snippet returns the leading SnippetLength characters of s.
func Snippet(s string) string {
	r := []rune(s)
	if len(r) <= SnippetLength {
		return s
	}
	return string(r[:SnippetLength])
}

// HasMoreText reports whether s continues past the snippet boundary.
func HasMoreText(s string) bool {
	return len([]rune(s)) > SnippetLength
}

// RestText returns everything after the snippet boundary.
func RestText(s string) string {
	r := []rune(s)
	if len(r) <= SnippetLength {
		return ""
	}
	return string(r[SnippetLength:])
}
