package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	cases := map[string]string{
		"":                  "",
		"   ":               "",
		"  Ubuntu\n":        "ubuntu",
		"192.168.1.100":     "192.168.1.100",
		"FLAG{Mixed_Case}":  "flag{mixed_case}",
		"ÄÖÜ":               "äöü",
		"inner  spaces  OK": "inner  spaces  ok",
	}
	for in, want := range cases {
		assert.Equal(t, want, Normalize(in), "input %q", in)
	}
}

func TestMatchesIsExact(t *testing.T) {
	assert.True(t, Matches("Ubuntu", " ubuntu "))
	assert.True(t, Matches("80", "80"))
	assert.False(t, Matches("80", "8080"))
	assert.False(t, Matches("Ubuntu", "Ubuntu 22.04"))
	assert.False(t, Matches("Ubuntu", "ubunt"))
	assert.False(t, Matches("Ubuntu", ""))
}
