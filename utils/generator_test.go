package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	cases := []struct {
		title string
		want  string
	}{
		{"Save the Rainforest", "save-the-rainforest"},
		{"  Build a Well!!  ", "build-a-well"},
		{"100% Solar Powered", "100-solar-powered"},
		{"---", ""},
		{"Déjà Vu Documentary", "d-j-vu-documentary"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Slugify(tc.title), "title %q", tc.title)
	}
}

func TestFormatCents(t *testing.T) {
	assert.Equal(t, "920.00", FormatCents(92000))
	assert.Equal(t, "0.05", FormatCents(5))
	assert.Equal(t, "0.00", FormatCents(0))
	assert.Equal(t, "10.30", FormatCents(1030))
	assert.Equal(t, "-4.50", FormatCents(-450))
}
