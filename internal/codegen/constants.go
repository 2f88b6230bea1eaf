// Package codegen provides code generation helpers and constants.
package codegen

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Variable names used in generated code
const (
	InputName  = "input"
	OffsetName = "offset"
	StateName  = "state"
	PosName    = "pos"
	RuneName   = "r"
	SizeName   = "size"
	EndName    = "end"
	TokensName = "tokens"
)

// AcceptTableName returns the name of the accept table generated for typeName.
func AcceptTableName(typeName string) string {
	return LowerFirst(typeName) + "Accept"
}

// TokenConstName returns the constant name for a token of typeName. Tokens
// are split on anything that is not a letter or digit and each part is
// capitalized, so "left_paren" becomes "LeftParen" and "IDENT" becomes
// "Ident". Tokens with no usable characters fall back to their index.
func TokenConstName(typeName, token string, index int) string {
	var b strings.Builder
	b.WriteString(typeName)
	words := strings.FieldsFunc(token, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	if len(words) == 0 {
		return typeName + "Token" + strconv.Itoa(index)
	}
	for _, w := range words {
		if strings.ToUpper(w) == w {
			w = strings.ToLower(w)
		}
		b.WriteString(UpperFirst(w))
	}
	return b.String()
}

// LowerFirst converts the first character of a string to lowercase.
func LowerFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if size == 0 {
		return s
	}
	return string(unicode.ToLower(r)) + s[size:]
}

// UpperFirst converts the first character of a string to uppercase.
func UpperFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if size == 0 {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
