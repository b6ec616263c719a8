// Package fingerprint hashes the element structure of an HTML document so
// two interaction states can be compared cheaply.
package fingerprint

import (
	"hash/fnv"
	"math/bits"
	"sort"
	"strings"

	"golang.org/x/net/html"
)

// shingleSize is the number of consecutive element tokens hashed together.
const shingleSize = 3

// Structure returns a 64-bit SimHash over the document's elements. Each
// element contributes its tag name plus its sorted class list, so toggling
// a class on one element moves the hash while text changes do not.
// An empty document hashes to 0.
func Structure(doc string) uint64 {
	tokens := elementTokens(doc)
	if len(tokens) == 0 {
		return 0
	}
	if len(tokens) < shingleSize {
		return simhash(tokens)
	}

	shingles := make([]string, 0, len(tokens)-shingleSize+1)
	for i := 0; i+shingleSize <= len(tokens); i++ {
		shingles = append(shingles, strings.Join(tokens[i:i+shingleSize], "_"))
	}
	return simhash(shingles)
}

// Distance returns the Hamming distance between two fingerprints.
func Distance(a, b uint64) int {
	return bits.OnesCount64(a ^ b)
}

func elementTokens(doc string) []string {
	z := html.NewTokenizer(strings.NewReader(doc))
	var tokens []string
	for {
		switch z.Next() {
		case html.ErrorToken:
			return tokens
		case html.StartTagToken, html.SelfClosingTagToken:
			tokens = append(tokens, elementToken(z))
		}
	}
}

func elementToken(z *html.Tokenizer) string {
	name, hasAttr := z.TagName()
	tag := string(name)
	var classes []string
	for hasAttr {
		var key, val []byte
		key, val, hasAttr = z.TagAttr()
		if string(key) == "class" {
			classes = strings.Fields(string(val))
		}
	}
	if len(classes) == 0 {
		return tag
	}
	sort.Strings(classes)
	return tag + "." + strings.Join(classes, ".")
}

func simhash(features []string) uint64 {
	var weights [64]int
	for _, f := range features {
		h := fnv.New64a()
		h.Write([]byte(f))
		sum := h.Sum64()
		for bit := 0; bit < 64; bit++ {
			if sum&(1<<uint(bit)) != 0 {
				weights[bit]++
			} else {
				weights[bit]--
			}
		}
	}

	var fp uint64
	for bit, w := range weights {
		if w > 0 {
			fp |= 1 << uint(bit)
		}
	}
	return fp
}
