package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderTemplate(t *testing.T) {
	tests := []struct {
		name string
		tmpl string
		data map[string]string
		want string
	}{
		{
			name: "substitutes known keys",
			tmpl: "Hola {nombre_estudiante}, periodo {periodo}",
			data: map[string]string{"nombre_estudiante": "Ana Pérez", "periodo": "2025-I"},
			want: "Hola Ana Pérez, periodo 2025-I",
		},
		{
			name: "absent key stays literal",
			tmpl: "Hola {nombre_estudiante}",
			data: map[string]string{},
			want: "Hola {nombre_estudiante}",
		},
		{
			name: "empty value stays literal",
			tmpl: "Hola {nombre_estudiante}",
			data: map[string]string{"nombre_estudiante": ""},
			want: "Hola {nombre_estudiante}",
		},
		{
			name: "empty template",
			tmpl: "",
			data: map[string]string{"x": "y"},
			want: "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RenderTemplate(tt.tmpl, tt.data))
		})
	}
}
