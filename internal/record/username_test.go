package record

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeriveUsername(t *testing.T) {
	tests := []struct {
		name      string
		firstName string
		lastName  string
		want      string
	}{
		{name: "simple", firstName: "Jane", lastName: "Doe", want: "jdoe"},
		{name: "umlaut in last name", firstName: "Jörg", lastName: "Müller", want: "jmueller"},
		{name: "umlaut as first letter", firstName: "Özlem", lastName: "Kaya", want: "oekaya"},
		{name: "sharp s", firstName: "Anna", lastName: "Weiß", want: "aweiss"},
		{name: "space in last name", firstName: "Maria", lastName: "de Silva", want: "mdesilva"},
		{name: "accented name", firstName: "René", lastName: "Lévy", want: "rlevy"},
		{name: "missing first name", firstName: "", lastName: "Doe", want: "doe"},
		{name: "missing both", firstName: "", lastName: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DeriveUsername(tt.firstName, tt.lastName))
		})
	}
}

func TestFoldUmlauts(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"äöüß", "aeoeuess"},
		{"ÄÖÜ", "AeOeUe"},
		{"plain", "plain"},
		{"café", "cafe"},
		{"", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, FoldUmlauts(tt.in), "input %q", tt.in)
	}
}
