// Package moderation filters chat content against an embedded word list
// before it is persisted or broadcast.
package moderation

import (
	"bufio"
	"embed"
	"fmt"
	"strings"
	"unicode"

	goahocorasick "github.com/anknown/ahocorasick"
)

//go:embed censored/*.txt
var wordLists embed.FS

// CensoredChar replaces every rune of a matched word.
const CensoredChar = '*'

// Moderator stars out censored words in chat messages. Matching runs over a
// normalized view of the text (lowercased, punctuation and spacing stripped,
// common leet substitutions folded) so trivial obfuscation does not bypass
// the filter, while replacement happens on the original runes to preserve
// the message layout.
type Moderator struct {
	matcher *goahocorasick.Machine
}

func NewModerator(words []string) (*Moderator, error) {
	patterns := make([][]rune, 0, len(words))
	for _, w := range words {
		normalized, _ := normalize(w)
		if len(normalized) == 0 {
			continue
		}
		patterns = append(patterns, normalized)
	}

	machine := new(goahocorasick.Machine)
	if err := machine.Build(patterns); err != nil {
		return nil, fmt.Errorf("build word matcher: %w", err)
	}
	return &Moderator{matcher: machine}, nil
}

// NewEmbeddedModerator builds a moderator from the word lists shipped with
// the binary.
func NewEmbeddedModerator() (*Moderator, error) {
	words, err := loadEmbeddedWords()
	if err != nil {
		return nil, err
	}
	return NewModerator(words)
}

// Censor replaces every matched word with stars. Clean input is returned
// unchanged.
func (m *Moderator) Censor(original string) string {
	normalized, origIdx := normalize(original)
	if len(normalized) == 0 {
		return original
	}

	spans := m.matcher.MultiPatternSearch(normalized, false)
	if len(spans) == 0 {
		return original
	}

	runes := []rune(original)
	for _, span := range spans {
		start := span.Pos
		end := start + len(span.Word)
		if start < 0 || end > len(origIdx) {
			continue
		}
		for i := origIdx[start]; i <= origIdx[end-1]; i++ {
			runes[i] = CensoredChar
		}
	}
	return string(runes)
}

// normalize lowercases and folds leet substitutions, dropping noise runes.
// origIdx maps every normalized rune back to its original position.
func normalize(input string) ([]rune, []int) {
	original := []rune(input)
	normalized := make([]rune, 0, len(original))
	origIdx := make([]int, 0, len(original))

	for i, r := range original {
		folded := foldLeet(r)
		if unicode.IsPunct(folded) || unicode.IsSpace(folded) || unicode.IsSymbol(folded) {
			continue
		}
		normalized = append(normalized, unicode.ToLower(folded))
		origIdx = append(origIdx, i)
	}
	return normalized, origIdx
}

func foldLeet(r rune) rune {
	switch r {
	case '4', '@':
		return 'a'
	case '3':
		return 'e'
	case '1', '!':
		return 'i'
	case '0':
		return 'o'
	case '5', '$':
		return 's'
	case '7':
		return 't'
	default:
		return r
	}
}

func loadEmbeddedWords() ([]string, error) {
	entries, err := wordLists.ReadDir("censored")
	if err != nil {
		return nil, fmt.Errorf("read word lists: %w", err)
	}

	var words []string
	for _, entry := range entries {
		file, err := wordLists.Open("censored/" + entry.Name())
		if err != nil {
			return nil, fmt.Errorf("open word list %s: %w", entry.Name(), err)
		}
		scanner := bufio.NewScanner(file)
		for scanner.Scan() {
			word := strings.TrimSpace(scanner.Text())
			if word == "" || strings.HasPrefix(word, "#") {
				continue
			}
			words = append(words, word)
		}
		if err := scanner.Err(); err != nil {
			_ = file.Close()
			return nil, fmt.Errorf("scan word list %s: %w", entry.Name(), err)
		}
		_ = file.Close()
	}
	return words, nil
}
