package xmltree

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalLayout(t *testing.T) {
	root := New("root").Set("a", "1").Append(
		New("comments").SetText("hello"),
		New("group").Append(
			New("item").Set("name", "x"),
			New("item").Set("name", "y").Set("flag", "true"),
		),
		New("empty"),
	)

	out, err := Marshal(root)
	require.NoError(t, err)

	want := `<?xml version="1.0" encoding="UTF-8"?>
<root a="1">
  <comments>hello</comments>
  <group>
    <item name="x"/>
    <item name="y" flag="true"/>
  </group>
  <empty/>
</root>
`
	assert.Equal(t, want, string(out))
}

func TestMarshalEscaping(t *testing.T) {
	tests := []struct {
		name string
		el   *Element
		want string
	}{
		{
			name: "line break marker in text",
			el:   New("comments").SetText("line1<br>line2<br>"),
			want: "<comments>line1&lt;br&gt;line2&lt;br&gt;</comments>\n",
		},
		{
			name: "line break marker in attribute",
			el:   New("table").Set("comments", "a<br>b"),
			want: `<table comments="a&lt;br&gt;b"/>` + "\n",
		},
		{
			name: "ampersand and quote",
			el:   New("column").Set("defaultValue", `say "hi" & bye`),
			want: `<column defaultValue="say &quot;hi&quot; &amp; bye"/>` + "\n",
		},
		{
			name: "quotes stay literal in text",
			el:   New("comments").SetText(`say "hi" and 'bye'`),
			want: `<comments>say "hi" and 'bye'</comments>` + "\n",
		},
		{
			name: "apostrophe stays literal in attribute",
			el:   New("column").Set("defaultValue", "'n/a'"),
			want: `<column defaultValue="'n/a'"/>` + "\n",
		},
		{
			name: "whitespace controls in attribute",
			el:   New("column").Set("defaultValue", "a\tb\nc\r"),
			want: `<column defaultValue="a&#x9;b&#xA;c&#xD;"/>` + "\n",
		},
		{
			name: "invalid characters replaced",
			el:   New("comments").SetText("a\x00b"),
			want: "<comments>a\uFFFDb</comments>\n",
		},
		{
			name: "non-ascii passes through",
			el:   New("comments").SetText("ユーザー"),
			want: "<comments>ユーザー</comments>\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := Marshal(tt.el)
			require.NoError(t, err)
			assert.Equal(t, Header+"\n"+tt.want, string(out))
		})
	}
}

func TestEncoderCustomIndent(t *testing.T) {
	var buf bytes.Buffer
	enc := NewEncoder(&buf)
	enc.Indent("\t")

	require.NoError(t, enc.Encode(New("a").Append(New("b"))))
	assert.Equal(t, Header+"\n<a>\n\t<b/>\n</a>\n", buf.String())
}

func TestEncodeRejectsUnnamedNodes(t *testing.T) {
	_, err := Marshal(New("root").Append(&Element{}))
	assert.Error(t, err)

	_, err = Marshal(New("root").Set("", "x"))
	assert.Error(t, err)

	_, err = Marshal(nil)
	assert.Error(t, err)
}

func TestLookupHelpers(t *testing.T) {
	root := New("table").Set("name", "t").Append(
		New("column").Set("name", "a"),
		New("index").Set("name", "i"),
		New("column").Set("name", "b"),
	)

	name, ok := root.Attr("name")
	assert.True(t, ok)
	assert.Equal(t, "t", name)

	_, ok = root.Attr("comments")
	assert.False(t, ok)

	cols := root.ChildrenNamed("column")
	require.Len(t, cols, 2)
	assert.Equal(t, "b", cols[1].Attrs[0].Value)
	assert.Nil(t, root.Child("primaryKey"))
	assert.NotNil(t, root.Child("index"))
}
