package sim

import (
	"fmt"
	"strconv"
	"strings"
)

// A Named object is an object that has a name.
type Named interface {
	Name() string
}

// NameToken is one dot-separated element of a hierarchical name, such as
// "Chan[2]" in "MLP.Chan[2]".
type NameToken struct {
	ElemName string
	Index    []int
}

// ParseName splits a hierarchical name into its tokens. It panics if a token
// has unmatched brackets or a non-integer index.
func ParseName(name string) []NameToken {
	parts := strings.Split(name, ".")
	tokens := make([]NameToken, 0, len(parts))

	for _, p := range parts {
		tokens = append(tokens, parseNameToken(p))
	}

	return tokens
}

func parseNameToken(s string) NameToken {
	open := strings.IndexByte(s, '[')
	if open < 0 {
		if strings.ContainsRune(s, ']') {
			panic("Name bracket must match")
		}

		return NameToken{ElemName: s}
	}

	token := NameToken{ElemName: s[:open]}
	rest := s[open:]

	for rest != "" {
		if rest[0] != '[' {
			panic("Name bracket must match")
		}

		end := strings.IndexByte(rest, ']')
		if end < 0 {
			panic("Name bracket must match")
		}

		index, err := strconv.Atoi(rest[1:end])
		if err != nil {
			panic("Name index must be integer")
		}

		token.Index = append(token.Index, index)
		rest = rest[end+1:]
	}

	return token
}

// NameMustBeValid panics if the name does not follow the naming convention:
// dot-separated, no empty elements, every element starts with a capital
// letter, no underscores, dashes or quotes, and series elements use
// square-bracket indices ("MLP.Chan[0]").
func NameMustBeValid(name string) {
	defer func() {
		if r := recover(); r != nil {
			panic(fmt.Sprintf("Name %q is not valid: %v", name, r))
		}
	}()

	for _, token := range ParseName(name) {
		tokenMustBeValid(token)
	}
}

func tokenMustBeValid(token NameToken) {
	if token.ElemName == "" {
		panic("Name element must not be empty")
	}

	if strings.ContainsAny(token.ElemName, "_\"'-") {
		panic("Name element must not contain _, \", ' or -")
	}

	if token.ElemName[0] < 'A' || token.ElemName[0] > 'Z' {
		panic("Name element must start with a capital letter")
	}
}

// BuildName joins a parent name and an element name.
func BuildName(parentName, elementName string) string {
	if parentName == "" {
		return elementName
	}

	return parentName + "." + elementName
}

// BuildNameWithIndex joins a parent name and an indexed element name, as in
// BuildNameWithIndex("MLP", "Chan", 0) == "MLP.Chan[0]".
func BuildNameWithIndex(parentName, elementName string, index int) string {
	return BuildName(parentName, elementName+"["+strconv.Itoa(index)+"]")
}
