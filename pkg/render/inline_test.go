package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatInline(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{name: "bold", text: "*hi* there", want: "<b>hi</b> there"},
		{name: "italic", text: "so _very_ nice", want: "so <i>very</i> nice"},
		{name: "strike", text: "~gone~", want: "<s>gone</s>"},
		{name: "nesting order", text: "~_*all*_~", want: "<s><i><b>all</b></i></s>"},
		{name: "snake case untouched", text: "call my_func_name now", want: "call my_func_name now"},
		{name: "arithmetic untouched", text: "2*3*4", want: "2*3*4"},
		{name: "padded markers untouched", text: "a * b * c", want: "a * b * c"},
		{name: "markers do not cross lines", text: "*a\nb*", want: "*a\nb*"},
		{
			name: "attributes shielded",
			text: `<a href="x" target="_blank">a_b</a> _c_`,
			want: `<a href="x" target="_blank">a_b</a> <i>c</i>`,
		},
		{
			name: "placeholder character in input",
			text: "pre\x1a" + `<a href="x" target="_blank">a_b</a> _c_`,
			want: `pre<a href="x" target="_blank">a_b</a> <i>c</i>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatInline(tt.text))
		})
	}
}

func TestFormat_Paragraphs(t *testing.T) {
	assert.Equal(t, "<p>one</p>", Format("one"))
	assert.Equal(t, "<p>a</p><p>b</p>", Format("a\nb"))
	assert.Equal(t, "<p>a</p><p></p><p>b</p>", Format("a\n\nb"))
	assert.Equal(t, "<p><b>a</b></p><p><i>b</i></p>", Format("*a*\n_b_"))
}
