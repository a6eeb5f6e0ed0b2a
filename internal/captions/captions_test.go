package captions

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lectio/lectio/internal/models"
)

func TestSplit_ShortTextSingleCue(t *testing.T) {
	got := Split(0, 0, 2*time.Second, "hello world")
	require.Len(t, got, 1)
	assert.Equal(t, 1, got[0].Index)
	assert.Equal(t, time.Duration(0), got[0].Begin)
	assert.Equal(t, 2*time.Second, got[0].End)
	assert.Equal(t, "hello world", got[0].Text)
}

func TestSplit_ReconstructsText(t *testing.T) {
	text := "the quick brown fox jumps over the lazy dog and keeps on running through the tall grass until sunset"
	got := Split(0, 0, 10*time.Second, text)
	require.Greater(t, len(got), 1)

	parts := make([]string, 0, len(got))
	for _, c := range got {
		assert.NotEmpty(t, c.Text)
		parts = append(parts, c.Text)
	}
	assert.Equal(t, text, strings.Join(parts, " "))
}

func TestSplit_NeverCutsInsideWord(t *testing.T) {
	text := strings.Repeat("supercalifragilistic ", 8)
	got := Split(0, 0, 8*time.Second, strings.TrimSpace(text))
	for _, c := range got {
		for _, w := range strings.Fields(c.Text) {
			assert.Equal(t, "supercalifragilistic", w)
		}
	}
}

func TestSplit_TilesSpanExactly(t *testing.T) {
	begin := 3 * time.Second
	end := 15 * time.Second
	text := "one two three four five six seven eight nine ten eleven twelve thirteen fourteen"
	got := Split(4, begin, end, text)
	require.Greater(t, len(got), 1)

	assert.Equal(t, begin, got[0].Begin)
	assert.Equal(t, end, got[len(got)-1].End)
	for i, c := range got {
		assert.Equal(t, 5+i, c.Index)
		assert.Less(t, int64(c.Begin), int64(c.End))
		if i > 0 {
			assert.Equal(t, got[i-1].End, c.Begin)
		}
	}
}

func TestSplit_DurationProportionalToLength(t *testing.T) {
	// First chunk gets 5/11 of the span, the final chunk the rest.
	got := SplitWithLimit(0, 0, 2*time.Second, "abcde abcde", 5)
	require.Len(t, got, 2)
	wantFirst := time.Duration(int64(2*time.Second) * 5 / 11)
	assert.Equal(t, wantFirst, got[0].End)
	assert.Equal(t, wantFirst, got[1].Begin)
	assert.Equal(t, 2*time.Second, got[1].End)
}

func TestSplit_TinyLimit(t *testing.T) {
	got := SplitWithLimit(0, 0, time.Second, "alpha beta gamma delta", 11)
	require.Len(t, got, 2)
	assert.Equal(t, "alpha beta gamma", got[0].Text)
	assert.Equal(t, "delta", got[1].Text)
	assert.Equal(t, got[0].End, got[1].Begin)
	assert.Equal(t, time.Second, got[1].End)
}

func TestSplit_EmptyText(t *testing.T) {
	assert.Empty(t, Split(0, 0, time.Second, ""))
}

func TestEncodeSRT(t *testing.T) {
	caps := []models.Caption{
		{Index: 7, Begin: 61*time.Second + 500*time.Millisecond, End: 63 * time.Second, Text: "first"},
		{Index: 8, Begin: 63 * time.Second, End: 65 * time.Second, Text: "second"},
	}
	got := EncodeSRT(caps)
	want := "1\n00:01:01,500 --> 00:01:03,000\nfirst\n\n" +
		"2\n00:01:03,000 --> 00:01:05,000\nsecond\n\n"
	assert.Equal(t, want, got)
}

func TestEncodeVTT_Header(t *testing.T) {
	got := EncodeVTT(nil, "en-US")
	assert.True(t, strings.HasPrefix(got, "WEBVTT Kind: captions; Language: en-US\n\n"))
	assert.Contains(t, got, "NOTE\nCreated on ")
}

func TestEscaping(t *testing.T) {
	caps := []models.Caption{{
		Begin: 0,
		End:   time.Second,
		Text:  "a < b & b > c ---> d\n\n\n\ne",
	}}
	got := EncodeSRT(caps)
	assert.Contains(t, got, "a &lt; b &amp; b &gt; c -=> d\ne")
	assert.NotContains(t, got, "-->\n")
	// The arrow only survives in the timing line.
	assert.Equal(t, 1, strings.Count(got, "-->"))
}

func TestDecodeVTT_RoundTrip(t *testing.T) {
	caps := []models.Caption{
		{Begin: 0, End: 1500 * time.Millisecond, Text: "hello there"},
		{Begin: 1500 * time.Millisecond, End: 3 * time.Second, Text: "general kenobi"},
		{Begin: 2*time.Hour + 3*time.Second, End: 2*time.Hour + 4*time.Second, Text: "late cue"},
	}
	decoded, err := DecodeVTT(EncodeVTT(caps, "en-US"))
	require.NoError(t, err)
	require.Len(t, decoded, len(caps))
	for i := range caps {
		assert.Equal(t, caps[i].Begin, decoded[i].Begin)
		assert.Equal(t, caps[i].End, decoded[i].End)
		assert.Equal(t, caps[i].Text, decoded[i].Text)
	}
}

func TestDecodeVTT_MissingHeader(t *testing.T) {
	_, err := DecodeVTT("00:00:00.000 --> 00:00:01.000\nno header\n\n")
	assert.Error(t, err)
}

func TestDecodeVTT_SkipsNoteBlocks(t *testing.T) {
	doc := "WEBVTT Kind: captions; Language: en-US\n\n" +
		"NOTE\nCreated on 2026-01-01T00:00:00Z by lectio\n\n" +
		"00:00:01.000 --> 00:00:02.250\nonly cue\n\n"
	decoded, err := DecodeVTT(doc)
	require.NoError(t, err)
	require.Len(t, decoded, 1)
	assert.Equal(t, time.Second, decoded[0].Begin)
	assert.Equal(t, 2250*time.Millisecond, decoded[0].End)
	assert.Equal(t, "only cue", decoded[0].Text)
}

func TestParseTimestamp_Invalid(t *testing.T) {
	_, err := parseTimestamp("nonsense")
	assert.Error(t, err)
}
