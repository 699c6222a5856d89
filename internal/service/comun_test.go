package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Vela Ligera", "vela-ligera"},
		{"  Náutica  ", "nautica"},
		{"Piragüismo & Remo", "piraguismo-remo"},
		{"Año Ñandú", "ano-nandu"},
		{"--Kayak--", "kayak"},
		{"Clase 2025/26", "clase-2025-26"},
		{"¿?", "item"},
		{"", "item"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, slugify(tt.in))
		})
	}

	largo := slugify(strings.Repeat("ab ", 60))
	assert.LessOrEqual(t, len(largo), 120)
	assert.False(t, strings.HasSuffix(largo, "-"))
}
