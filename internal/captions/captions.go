// Package captions implements the caption synthesis and subtitle container
// algorithms: time-proportional splitting of recognized speech into bounded
// cues, SubRip and WebVTT encoding, and WebVTT decoding.
package captions

import (
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/lectio/lectio/internal/models"
)

// MaxCueLength is the bound on a single cue body, in characters.
const MaxCueLength = 40

// VTTHeader is the magic tag a WebVTT file must begin with.
const VTTHeader = "WEBVTT"

// Split chops a span of recognized speech into cues of at most MaxCueLength
// characters, never cutting inside a word. See SplitWithLimit.
func Split(existingCount int, begin, end time.Duration, text string) []models.Caption {
	return SplitWithLimit(existingCount, begin, end, text, MaxCueLength)
}

// SplitWithLimit distributes the span duration across cues proportionally to
// their character share of the remaining text, so the cues exactly tile
// [begin, end]. Cue indices continue from existingCount + 1. A chunk is
// extended to the next space past the limit; when no space remains the rest
// of the text becomes the final cue.
func SplitWithLimit(existingCount int, begin, end time.Duration, text string, limit int) []models.Caption {
	var captions []models.Caption
	currCounter := existingCount + 1
	tempCaption := text
	curBegin := begin
	curDuration := end - begin

	for len(tempCaption) > limit {
		var caption string
		remaining := len(tempCaption)
		index := strings.IndexByte(tempCaption[limit:], ' ')
		if index == -1 {
			caption = tempCaption
			tempCaption = ""
		} else {
			caption = tempCaption[:limit+index]
			tempCaption = strings.TrimSpace(tempCaption[limit+index:])
		}
		newDuration := time.Duration(int64(curDuration) * int64(len(caption)) / int64(remaining))
		curEnd := curBegin + newDuration
		captions = append(captions, models.Caption{
			Index: currCounter,
			Begin: curBegin,
			End:   curEnd,
			Text:  caption,
		})
		currCounter++
		curBegin = curEnd
		curDuration = end - curBegin
	}
	if len(tempCaption) > 0 {
		captions = append(captions, models.Caption{
			Index: currCounter,
			Begin: curBegin,
			End:   end,
			Text:  tempCaption,
		})
	}
	return captions
}

// escapeText makes a cue body legal inside a subtitle container. The
// ampersand must be replaced first or the other entities get double-escaped.
func escapeText(text string) string {
	escape := strings.ReplaceAll(text, "&", "&amp;")
	escape = strings.ReplaceAll(escape, "<", "&lt;")
	escape = strings.ReplaceAll(escape, ">", "&gt;")
	// '-->' inside a cue body would read as a timing line.
	for strings.Contains(escape, "-->") {
		escape = strings.ReplaceAll(escape, "-->", "=>")
	}
	// An embedded blank line would terminate the cue early.
	for strings.Contains(escape, "\n\n") {
		escape = strings.ReplaceAll(escape, "\n\n", "\n")
	}
	return escape
}

func formatTimestamp(d time.Duration, msSep byte) string {
	if d < 0 {
		d = 0
	}
	h := d / time.Hour
	m := (d % time.Hour) / time.Minute
	s := (d % time.Minute) / time.Second
	ms := (d % time.Second) / time.Millisecond
	return fmt.Sprintf("%02d:%02d:%02d%c%03d", h, m, s, msSep, ms)
}

func parseTimestamp(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	var h, m, sec, ms int
	if n, err := fmt.Sscanf(s, "%d:%d:%d.%d", &h, &m, &sec, &ms); err != nil || n != 4 {
		if n, err := fmt.Sscanf(s, "%d:%d:%d", &h, &m, &sec); err != nil || n != 3 {
			return 0, errors.Errorf("invalid timestamp %q", s)
		}
		ms = 0
	}
	return time.Duration(h)*time.Hour +
		time.Duration(m)*time.Minute +
		time.Duration(sec)*time.Second +
		time.Duration(ms)*time.Millisecond, nil
}

// EncodeSRT renders captions as a SubRip document with a fresh 1-based
// sequential index.
func EncodeSRT(captions []models.Caption) string {
	var content strings.Builder
	for i, c := range captions {
		content.WriteString(fmt.Sprintf("%d\n%s --> %s\n%s\n\n",
			i+1,
			formatTimestamp(c.Begin, ','),
			formatTimestamp(c.End, ','),
			escapeText(c.Text),
		))
	}
	return content.String()
}

// EncodeVTT renders captions as a WebVTT document. Cues carry no index line;
// the header names the language and a NOTE block records generation time.
func EncodeVTT(captions []models.Caption, language string) string {
	now := time.Now().UTC().Format(time.RFC3339)
	var content strings.Builder
	content.WriteString(fmt.Sprintf("%s Kind: captions; Language: %s\n\n", VTTHeader, language))
	content.WriteString(fmt.Sprintf("NOTE\nCreated on %s by lectio\n\n", now))
	for _, c := range captions {
		content.WriteString(fmt.Sprintf("%s --> %s\n%s\n\n",
			formatTimestamp(c.Begin, '.'),
			formatTimestamp(c.End, '.'),
			escapeText(c.Text),
		))
	}
	return content.String()
}

// DecodeVTT parses a WebVTT document back into captions. Blocks without a
// timing line (headers, NOTE blocks) are skipped; within a cue block, every
// non-timing line belongs to the body.
func DecodeVTT(text string) ([]models.Caption, error) {
	cues := strings.Split(text, "\n\n")
	if len(cues) == 0 || !strings.HasPrefix(cues[0], VTTHeader) {
		return nil, errors.Errorf("missing %s header", VTTHeader)
	}

	var captions []models.Caption
	idx := 0
	for _, cue := range cues {
		if !strings.Contains(cue, "-->") {
			continue
		}
		caption := models.Caption{Index: idx}
		idx++
		for _, line := range strings.Split(cue, "\n") {
			if strings.Contains(line, "-->") {
				timestamps := strings.SplitN(line, "-->", 2)
				begin, err := parseTimestamp(timestamps[0])
				if err != nil {
					return nil, err
				}
				end, err := parseTimestamp(timestamps[1])
				if err != nil {
					return nil, err
				}
				caption.Begin = begin
				caption.End = end
			} else {
				caption.Text += line
			}
		}
		captions = append(captions, caption)
	}
	return captions, nil
}
