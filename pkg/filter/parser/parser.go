// Package parser extracts divination card tier mappings from loot filter
// files. Parsing is a pure function of file content; the parser never writes.
package parser

import (
	"bufio"
	"io"
	"os"
	"strconv"
	"strings"
)

// Rarity bounds for the ordinal tier scale.
const (
	RarityExtremelyRare = 1
	RarityCommon        = 4
)

const divinationCardClass = "divination card"

// Result is the outcome of parsing one filter file.
type Result struct {
	// HasDivinationSection is true when at least one block carries a
	// Class "Divination Card" condition. A file without one is a valid
	// "no opinion" result, not an error.
	HasDivinationSection bool
	TotalCards           int
	CardRarities         map[string]int
}

// Parser parses loot filter files. The zero value is ready to use.
type Parser struct{}

func New() *Parser {
	return &Parser{}
}

// ParseFile reads and parses a filter file. A missing or unreadable file
// yields an empty result and no error.
func (p *Parser) ParseFile(path string) (*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return emptyResult(), nil
	}
	defer f.Close()

	return p.Parse(f), nil
}

// Parse evaluates the block sequence of a filter, top-down. The first block
// that lists a card fixes its tier; later blocks never overwrite it.
func (p *Parser) Parse(r io.Reader) *Result {
	result := emptyResult()

	var current *block
	flush := func() {
		if current != nil {
			applyBlock(result, current)
			current = nil
		}
	}

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		keyword, rest := splitKeyword(line)

		switch keyword {
		case "Show", "Hide":
			flush()
			current = &block{show: keyword == "Show"}
		default:
			if current == nil {
				// Directive outside any block; skip.
				continue
			}
			current.applyLine(keyword, rest)
		}
	}
	flush()

	result.TotalCards = len(result.CardRarities)
	return result
}

func emptyResult() *Result {
	return &Result{CardRarities: make(map[string]int)}
}

func applyBlock(result *Result, b *block) {
	if !b.isDivination {
		return
	}

	result.HasDivinationSection = true

	tier := b.tier()
	for _, card := range b.baseTypes {
		if _, seen := result.CardRarities[card]; !seen {
			result.CardRarities[card] = tier
		}
	}
}

// block accumulates the conditions and display directives of one Show/Hide
// block while it is being read.
type block struct {
	show         bool
	isDivination bool
	baseTypes    []string

	fontSize int
	iconSize int
	hasBeam  bool
	hasSound bool
}

func (b *block) applyLine(keyword, rest string) {
	switch keyword {
	case "Class":
		for _, value := range conditionValues(rest) {
			if strings.EqualFold(value, divinationCardClass) ||
				strings.EqualFold(value, "divination") {
				b.isDivination = true
			}
		}
	case "BaseType":
		b.baseTypes = append(b.baseTypes, conditionValues(rest)...)
	case "SetFontSize":
		if size, err := strconv.Atoi(strings.TrimSpace(rest)); err == nil {
			b.fontSize = size
		}
	case "MinimapIcon":
		fields := strings.Fields(rest)
		if len(fields) > 0 {
			if size, err := strconv.Atoi(fields[0]); err == nil && size >= 0 && size <= 2 {
				b.iconSize = size + 1 // keep zero as "no icon"
			}
		}
	case "PlayAlertSound", "PlayAlertSoundPositional", "CustomAlertSound":
		b.hasSound = true
	case "PlayEffect":
		fields := strings.Fields(rest)
		// Temporary beams only flash on drop; they carry no lasting emphasis.
		if len(fields) > 0 && !strings.EqualFold(fields[len(fields)-1], "Temp") {
			b.hasBeam = true
		}
	}
}

// tier buckets a block's visual and audio prominence into the ordinal
// rarity scale. Louder blocks mean rarer cards. Hide blocks are always
// common; filters hide only worthless drops.
func (b *block) tier() int {
	if !b.show {
		return RarityCommon
	}

	score := 0

	switch b.iconSize {
	case 1: // largest icon
		score += 3
	case 2:
		score += 2
	case 3:
		score += 1
	}

	if b.hasBeam {
		score += 2
	}
	if b.hasSound {
		score++
	}
	if b.fontSize >= 40 {
		score++
	}

	switch {
	case score >= 6:
		return 1
	case score >= 4:
		return 2
	case score >= 2:
		return 3
	default:
		return 4
	}
}

// splitKeyword separates the leading keyword of a line from its arguments,
// dropping an inline comment.
func splitKeyword(line string) (string, string) {
	if idx := strings.Index(line, "#"); idx >= 0 && !insideQuotes(line, idx) {
		line = strings.TrimSpace(line[:idx])
	}

	keyword, rest, _ := strings.Cut(line, " ")
	return keyword, strings.TrimSpace(rest)
}

func insideQuotes(line string, idx int) bool {
	return strings.Count(line[:idx], `"`)%2 == 1
}

// conditionValues extracts the value list of a condition line, skipping a
// leading comparison operator. Quoted values may contain spaces; unquoted
// tokens are single words.
func conditionValues(rest string) []string {
	rest = strings.TrimSpace(rest)
	for _, op := range []string{"==", ">=", "<=", "=", ">", "<"} {
		if strings.HasPrefix(rest, op) {
			rest = strings.TrimSpace(rest[len(op):])
			break
		}
	}

	var values []string
	for len(rest) > 0 {
		rest = strings.TrimLeft(rest, " \t")
		if rest == "" {
			break
		}

		if rest[0] == '"' {
			end := strings.Index(rest[1:], `"`)
			if end < 0 {
				// Unterminated quote; treat the remainder as one value.
				if v := strings.TrimSpace(rest[1:]); v != "" {
					values = append(values, v)
				}
				break
			}
			if v := rest[1 : end+1]; v != "" {
				values = append(values, v)
			}
			rest = rest[end+2:]
			continue
		}

		token, remainder, _ := strings.Cut(rest, " ")
		if token != "" {
			values = append(values, token)
		}
		rest = remainder
	}

	return values
}
