package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"simple", "Electronics", "electronics"},
		{"spaces", "Home & Garden", "home-garden"},
		{"diacritics", "Café Crème", "cafe-creme"},
		{"collapses runs", "a  --  b", "a-b"},
		{"trims edges", "  -laptops-  ", "laptops"},
		{"digits kept", "USB 3.0 Hub", "usb-3-0-hub"},
		{"symbols only", "!!!", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Slugify(tc.in))
		})
	}
}
