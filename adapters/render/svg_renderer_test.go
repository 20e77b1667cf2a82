package render

import (
	"encoding/xml"
	"errors"
	"regexp"
	"strconv"
	"strings"
	"testing"

	"github.com/layer-3/clockguard/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type seqRandom struct{ next int }

func (s *seqRandom) Intn(n int) (int, error) {
	s.next++
	return s.next % n, nil
}

type brokenRandom struct{}

func (brokenRandom) Intn(int) (int, error) { return 0, errors.New("no entropy") }

type svgDoc struct {
	XMLName xml.Name   `xml:"svg"`
	Groups  []svgGroup `xml:"g"`
}

type svgGroup struct {
	Transform string `xml:"transform,attr"`
	Line      struct {
		X1    string `xml:"x1,attr"`
		Y1    string `xml:"y1,attr"`
		Style string `xml:"style,attr"`
	} `xml:"line"`
}

var rotateRe = regexp.MustCompile(`rotate\(([-0-9.]+)\)`)

type hand struct {
	angle float64
	style string
}

// hands returns every group whose line starts at the clock centre
func hands(t *testing.T, data []byte) []hand {
	t.Helper()
	var doc svgDoc
	require.NoError(t, xml.Unmarshal(data, &doc))

	var out []hand
	for _, g := range doc.Groups {
		if g.Line.X1 != "0" || g.Line.Y1 != "0" {
			continue
		}
		m := rotateRe.FindStringSubmatch(g.Transform)
		require.Len(t, m, 2, "hand without rotation: %q", g.Transform)
		a, err := strconv.ParseFloat(m[1], 64)
		require.NoError(t, err)
		out = append(out, hand{angle: a, style: g.Line.Style})
	}
	return out
}

func handByWidth(hs []hand, width string) (hand, int) {
	var found hand
	n := 0
	for _, h := range hs {
		if strings.Contains(h.style, "stroke-width:"+width+";") {
			found = h
			n++
		}
	}
	return found, n
}

func TestRenderHandAnglesForEveryTimeAndDifficulty(t *testing.T) {
	r := NewSVGRenderer(&seqRandom{})
	policy := core.DefaultPolicy()

	for _, d := range policy.Difficulties() {
		level, err := policy.Level(d)
		require.NoError(t, err)
		params := level.RenderParams()

		for h := 0; h < 12; h++ {
			for m := 0; m < 60; m++ {
				ct := core.ClockTime{Hour: h, Minute: m}
				img, err := r.Render(ct, params)
				require.NoError(t, err)

				hs := hands(t, img.Data)
				hourHand, n := handByWidth(hs, "6")
				require.Equal(t, 1, n, "%s %s: hour hand count", d, ct)
				minuteHand, n := handByWidth(hs, "4")
				require.Equal(t, 1, n, "%s %s: minute hand count", d, ct)

				require.InDelta(t, float64(h)*30+float64(m)*0.5, hourHand.angle, 1e-9, "%s %s", d, ct)
				require.InDelta(t, float64(m)*6, minuteHand.angle, 1e-9, "%s %s", d, ct)
			}
		}
	}
}

func TestRenderNoiseByLevel(t *testing.T) {
	r := NewSVGRenderer(&seqRandom{})
	policy := core.DefaultPolicy()
	ct := core.ClockTime{Hour: 3, Minute: 7}

	easy, err := r.Render(ct, policy[core.DifficultyEasy].RenderParams())
	require.NoError(t, err)
	hard, err := r.Render(ct, policy[core.DifficultyHard].RenderParams())
	require.NoError(t, err)

	assert.Len(t, hands(t, easy.Data), 2)
	assert.Len(t, hands(t, hard.Data), 3, "hard adds a decoy hand")
	assert.Greater(t, len(hard.Data), len(easy.Data))
	assert.Contains(t, string(hard.Data), "stroke-opacity:0.45")
	assert.Equal(t, ContentType, hard.ContentType)
}

func TestRenderDrawsAllNumerals(t *testing.T) {
	img, err := NewSVGRenderer(&seqRandom{}).Render(core.ClockTime{}, core.RenderParams{})
	require.NoError(t, err)
	for h := 1; h <= 12; h++ {
		assert.Contains(t, string(img.Data), ">"+strconv.Itoa(h)+"</text>")
	}
}

func TestRenderPropagatesRandomFailure(t *testing.T) {
	r := NewSVGRenderer(brokenRandom{})

	_, err := r.Render(core.ClockTime{Hour: 1}, core.DefaultPolicy()[core.DifficultyHard].RenderParams())
	assert.Error(t, err)

	// no noise, no randomness needed
	_, err = r.Render(core.ClockTime{Hour: 1}, core.DefaultPolicy()[core.DifficultyEasy].RenderParams())
	assert.NoError(t, err)
}
