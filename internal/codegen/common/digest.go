package common

import (
	"bufio"
	"bytes"
	"encoding/hex"
	"strings"

	"golang.org/x/crypto/blake2b"
)

const digestPrefix = "blake2b-256:"

// Digest fingerprints a generation input: the raw tree document followed by
// every option that is substituted into the output, each NUL separated.
func Digest(document []byte, options ...string) string {
	h, _ := blake2b.New256(nil)
	h.Write(document)
	for _, o := range options {
		h.Write([]byte{0})
		h.Write([]byte(o))
	}
	return digestPrefix + hex.EncodeToString(h.Sum(nil))
}

// ReadDigest finds the input digest stamped into the banner of a previously
// generated file. It only looks at the leading comment block.
func ReadDigest(generated []byte) (string, bool) {
	sc := bufio.NewScanner(bytes.NewReader(generated))
	for line := 0; sc.Scan() && line < 16; line++ {
		text := strings.TrimSpace(sc.Text())
		if rest, ok := strings.CutPrefix(text, "* Input digest:"); ok {
			d := strings.TrimSpace(rest)
			return d, strings.HasPrefix(d, digestPrefix)
		}
		if text == "*/" {
			break
		}
	}
	return "", false
}
