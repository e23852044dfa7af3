package filter

import (
	"context"
	"errors"
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubProvider struct {
	seeds map[string]map[string]string
}

func (p *stubProvider) Load(_ context.Context, name string) (map[string]string, error) {
	dict, ok := p.seeds[name]
	if !ok {
		return nil, errors.New("seed not found")
	}
	return dict, nil
}

func newTestFilter(words ...string) *Filter {
	f := New(WithLogger(zap.NewNop()))
	for _, w := range words {
		f.AddWord(w)
	}
	return f
}

// TestDictionary tests seeding and mutating the dictionary
func TestDictionary(t *testing.T) {
	t.Run("AddWordDefaultsToBleep", func(t *testing.T) {
		f := newTestFilter("foo")
		assert.Equal(t, map[string]string{"foo": DefaultReplacement}, f.Debug().Dictionary)
	})

	t.Run("AddWordWithReplacement", func(t *testing.T) {
		f := New().AddWord("Heck", "gosh")
		assert.Equal(t, "gosh", f.Debug().Dictionary["heck"])
	})

	t.Run("AddWordIgnoresEmpty", func(t *testing.T) {
		f := New().AddWord("")
		assert.Equal(t, 0, f.Len())
	})

	t.Run("AddThenRemoveRestoresState", func(t *testing.T) {
		f := New().Seed(map[string]string{"bar": "baz"})
		before := f.Debug().Dictionary

		f.AddWord("foo").RemoveWord("foo")
		assert.Equal(t, before, f.Debug().Dictionary)
	})

	t.Run("RemoveMissingWordIsNoop", func(t *testing.T) {
		f := newTestFilter("foo")
		f.RemoveWord("nothere")
		assert.Equal(t, 1, f.Len())
	})

	t.Run("SeedReplacesDictionary", func(t *testing.T) {
		f := newTestFilter("old")
		f.Seed(map[string]string{"New": "x", "": "dropped"})

		assert.Equal(t, map[string]string{"new": "x"}, f.Debug().Dictionary)
	})

	t.Run("SeedCopiesInput", func(t *testing.T) {
		dict := map[string]string{"a": "b"}
		f := New().Seed(dict)
		dict["c"] = "d"
		assert.Equal(t, 1, f.Len())
	})

	t.Run("SeedNamedLoadsFromProvider", func(t *testing.T) {
		provider := &stubProvider{seeds: map[string]map[string]string{
			"test": {"darn": "drat"},
		}}
		f := New(WithProvider(provider)).SeedNamed(context.Background(), "test")
		assert.Equal(t, map[string]string{"darn": "drat"}, f.Debug().Dictionary)
	})

	t.Run("SeedNamedFailureKeepsDictionary", func(t *testing.T) {
		f := New(WithProvider(&stubProvider{})).AddWord("keep")
		f.SeedNamed(context.Background(), "missing")
		assert.Equal(t, map[string]string{"keep": DefaultReplacement}, f.Debug().Dictionary)
	})

	t.Run("SeedNamedFirstFailureLeavesEmpty", func(t *testing.T) {
		f := New(WithProvider(&stubProvider{})).SeedNamed(context.Background(), "missing")
		assert.Equal(t, 0, f.Len())
	})

	t.Run("GetDefaults", func(t *testing.T) {
		dict, err := New().GetDefaults(context.Background())
		require.NoError(t, err)
		assert.NotEmpty(t, dict)
	})

	t.Run("DebugReturnsCopies", func(t *testing.T) {
		f := newTestFilter("foo")
		info := f.Debug()
		info.Dictionary["bar"] = "x"
		info.GrawlixChars[0] = "?"

		assert.Equal(t, 1, f.Len())
		assert.Equal(t, DefaultGrawlixChars, f.Debug().GrawlixChars)
		assert.Equal(t, "stars", info.ReplacementMethod)
	})
}

// TestReplacementMethods tests method selection and the three strategies
func TestReplacementMethods(t *testing.T) {
	t.Run("ParseAliases", func(t *testing.T) {
		cases := map[string]Method{
			"stars":          MethodStars,
			"mask":           MethodStars,
			"word":           MethodWord,
			"fixed-word":     MethodWord,
			"grawlix":        MethodGrawlix,
			"random-symbols": MethodGrawlix,
		}
		for name, want := range cases {
			got, err := ParseMethod(name)
			require.NoError(t, err, name)
			assert.Equal(t, want, got, name)
		}
	})

	t.Run("InvalidMethodKeepsState", func(t *testing.T) {
		f := New()
		_, err := f.SetReplacementMethod("grawlix")
		require.NoError(t, err)

		_, err = f.SetReplacementMethod("nonexistent")
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrInvalidMethod))
		assert.Equal(t, MethodGrawlix, f.Method())
	})

	t.Run("StarsKeepsLength", func(t *testing.T) {
		for _, word := range []string{"a", "bad", "naïve", "two words"} {
			assert.Equal(t, len([]rune(word)), len(starsReplacement(word)))
		}
	})

	t.Run("WordUsesDictionary", func(t *testing.T) {
		f := New().AddWord("heck", "gosh")
		_, err := f.SetReplacementMethod("word")
		require.NoError(t, err)

		assert.Equal(t, "oh gosh", f.Clean("oh heck"))
	})

	t.Run("WordFallsBackToDefault", func(t *testing.T) {
		f := New()
		_, _ = f.SetReplacementMethod("word")
		assert.Equal(t, DefaultReplacement, f.replacementFor("unknown"))
	})

	t.Run("WordBlankTextFallsBackToDefault", func(t *testing.T) {
		f := New().Seed(map[string]string{"heck": ""})
		_, _ = f.SetReplacementMethod("word")

		assert.Equal(t, "oh BLEEP no", f.Sanitize("oh heck no").Result)
		assert.Equal(t, "oh BLEEP no", f.Clean("oh heck no"))
	})

	t.Run("GrawlixUsesPalette", func(t *testing.T) {
		f := New(WithRand(rand.New(rand.NewPCG(1, 2)))).SetGrawlixChars([]string{"#", "%"})
		_, _ = f.SetReplacementMethod("grawlix")

		out := f.replacementFor("abcdef")
		assert.Len(t, out, 6)
		assert.Empty(t, strings.Trim(out, "#%"))
	})

	t.Run("GrawlixEmptyPaletteMasks", func(t *testing.T) {
		f := New().SetGrawlixChars(nil)
		_, _ = f.SetReplacementMethod("grawlix")
		assert.Equal(t, "***", f.replacementFor("bad"))
	})
}

// TestClean tests the lenient substring filter
func TestClean(t *testing.T) {
	t.Run("NoMatchUnchanged", func(t *testing.T) {
		f := newTestFilter("bad")
		assert.Equal(t, "all good here", f.Clean("all good here"))
	})

	t.Run("EmptyInput", func(t *testing.T) {
		assert.Equal(t, "", newTestFilter("bad").Clean(""))
	})

	t.Run("CaseInsensitive", func(t *testing.T) {
		f := newTestFilter("bad")
		assert.Equal(t, "so *** today", f.Clean("so BaD today"))
	})

	t.Run("MatchesInsideWords", func(t *testing.T) {
		f := newTestFilter("bad")
		assert.Equal(t, "***ge", f.Clean("badge"))
	})

	t.Run("OnlyFirstOccurrence", func(t *testing.T) {
		f := newTestFilter("bad")
		assert.Equal(t, "*** and bad", f.Clean("bad and bad"))
	})

	t.Run("EscapesMetacharacters", func(t *testing.T) {
		f := newTestFilter("a.b")
		assert.Equal(t, "axb ***", f.Clean("axb a.b"))
	})
}

// TestSanitize tests the strict word-boundary filter
func TestSanitize(t *testing.T) {
	t.Run("NoMatchUnchanged", func(t *testing.T) {
		f := newTestFilter("bad")
		text := "<p>nothing to see</p>"
		res := f.Sanitize(text)

		assert.Equal(t, 0, res.Found)
		assert.Equal(t, text, res.Result)
		assert.Empty(t, res.BadWords)
	})

	t.Run("PunctuationPreserved", func(t *testing.T) {
		f := newTestFilter("bad")
		res := f.Sanitize("this is bad!")

		assert.Equal(t, 1, res.Found)
		assert.Equal(t, []string{"bad"}, res.BadWords)
		assert.Equal(t, "this is ***!", res.Result)
	})

	t.Run("ExactKey", func(t *testing.T) {
		f := newTestFilter("bad")
		res := f.Sanitize("BAD")

		assert.GreaterOrEqual(t, res.Found, 1)
		assert.NotContains(t, strings.ToLower(res.Result), "bad")
	})

	t.Run("AllOccurrences", func(t *testing.T) {
		f := newTestFilter("bad")
		res := f.Sanitize("bad and bad")

		assert.Equal(t, 2, res.Found)
		assert.Equal(t, []string{"bad"}, res.BadWords)
		assert.Equal(t, "*** and ***", res.Result)
	})

	t.Run("AdjacentOccurrences", func(t *testing.T) {
		f := newTestFilter("bad")
		res := f.Sanitize("bad bad,bad")

		assert.Equal(t, 3, res.Found)
		assert.Equal(t, "*** ***,***", res.Result)
	})

	t.Run("RespectsWordBoundaries", func(t *testing.T) {
		f := newTestFilter("bad")
		res := f.Sanitize("badge abad bad_ bad2")

		assert.Equal(t, 0, res.Found)
		assert.Equal(t, "badge abad bad_ bad2", res.Result)
	})

	t.Run("NonASCIINeighbourIsBoundary", func(t *testing.T) {
		f := newTestFilter("bad")
		res := f.Sanitize("ébadé")
		assert.Equal(t, 1, res.Found)
		assert.Equal(t, "é***é", res.Result)
	})

	t.Run("MultiLine", func(t *testing.T) {
		f := newTestFilter("bad")
		res := f.Sanitize("bad\nline bad\nbad")
		assert.Equal(t, 3, res.Found)
		assert.Equal(t, "***\nline ***\n***", res.Result)
	})

	t.Run("StripsTagsAfterMatch", func(t *testing.T) {
		f := newTestFilter("bad")
		res := f.Sanitize("<b>bad</b>")

		assert.Equal(t, 1, res.Found)
		assert.NotContains(t, res.Result, "<")
		assert.Equal(t, " *** ", res.Result)
	})

	t.Run("CountsAcrossKeys", func(t *testing.T) {
		f := newTestFilter("bad", "ugly")
		res := f.Sanitize("bad, ugly and bad")

		assert.Equal(t, 3, res.Found)
		assert.ElementsMatch(t, []string{"bad", "ugly"}, res.BadWords)
		assert.Equal(t, "***, **** and ***", res.Result)
	})

	t.Run("PhraseBeforeWord", func(t *testing.T) {
		f := newTestFilter("bad", "bad word")
		res := f.Sanitize("a bad word")

		assert.Equal(t, 1, res.Found)
		assert.Equal(t, []string{"bad word"}, res.BadWords)
		assert.Equal(t, "a ********", res.Result)
	})

	t.Run("EscapedBadWords", func(t *testing.T) {
		f := newTestFilter("c++")
		res := f.Sanitize("i write c++ daily")

		assert.Equal(t, 1, res.Found)
		assert.Equal(t, []string{`c\+\+`}, res.BadWords)
		assert.Equal(t, "i write *** daily", res.Result)
	})

	t.Run("IdempotentOnOutput", func(t *testing.T) {
		f := newTestFilter("bad", "ugly")
		first := f.Sanitize("Bad things, ugly things")
		second := f.Sanitize(first.Result)

		assert.Equal(t, 2, first.Found)
		assert.Equal(t, 0, second.Found)
		assert.Equal(t, first.Result, second.Result)
	})

	t.Run("WordMethodReplacementNotRescanned", func(t *testing.T) {
		f := New().AddWord("bad", "bad bad")
		_, _ = f.SetReplacementMethod("word")

		res := f.Sanitize("so bad")
		assert.Equal(t, 1, res.Found)
		assert.Equal(t, "so bad bad", res.Result)
	})
}

// TestCleanVersusSanitize tests the documented difference between the two passes
func TestCleanVersusSanitize(t *testing.T) {
	f := newTestFilter("bad")
	text := "bad, really bad"

	assert.Equal(t, "***, really bad", f.Clean(text))
	assert.Equal(t, "***, really ***", f.Sanitize(text).Result)
}

func TestEscapeWord(t *testing.T) {
	assert.Equal(t, `a\.b\?c\*d\+e\^f\$g\[h\]i\\j\(k\)l\{m\}n\|o\-p`,
		EscapeWord(`a.b?c*d+e^f$g[h]i\j(k)l{m}n|o-p`))
	assert.Equal(t, "plain", EscapeWord("plain"))
	assert.Equal(t, "\xff\\.\xfe", EscapeWord("\xff.\xfe"))
	assert.Equal(t, "caf\u00e9\\+", EscapeWord("caf\u00e9+"))
}

func TestSanitizeInvalidUTF8Key(t *testing.T) {
	f := New().Seed(map[string]string{"\xff\xfe": "x", "bad": "good"})

	assert.Contains(t, f.Debug().Dictionary, "\xff\xfe")

	var res SanitizeResult
	require.NotPanics(t, func() { res = f.Sanitize("so bad \xff\xfe") })
	assert.Equal(t, []string{"bad", "\xff\xfe"}, res.BadWords)
	assert.Equal(t, 2, res.Found)
	assert.Equal(t, "so *** **", res.Result)
}
