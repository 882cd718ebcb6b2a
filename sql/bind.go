package sql

import (
	"fmt"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/nickyhof/CommitQuery/core"
)

const (
	planCacheSize = 1024
	planCacheTTL  = 10 * time.Minute
)

// Plan is the result of scanning a template: the text with escaped
// placeholders resolved and the byte offsets of every real placeholder.
type Plan struct {
	Template  string
	Quote     byte
	Text      string
	Positions []int
}

// plans is shared by every Binder; scanning depends only on the template
// and the string quote.
var plans = expirable.NewLRU[uint64, Plan](planCacheSize, nil, planCacheTTL)

// Scan tokenizes template and records the placeholder offsets.
func Scan(template string, quote byte) Plan {
	lexer := NewLexer(template, quote)
	var text strings.Builder
	text.Grow(len(template))

	plan := Plan{Template: template, Quote: quote}
	for {
		token := lexer.NextToken()
		if token.Type == EOF {
			break
		}
		if token.Type == Placeholder {
			plan.Positions = append(plan.Positions, text.Len())
		}
		text.WriteString(token.Value)
	}
	plan.Text = text.String()
	return plan
}

func cachedScan(template string, quote byte) Plan {
	key := planKey(template, quote)
	if plan, ok := plans.Get(key); ok && plan.Template == template && plan.Quote == quote {
		return plan
	}
	plan := Scan(template, quote)
	plans.Add(key, plan)
	return plan
}

func planKey(template string, quote byte) uint64 {
	digest := xxhash.New()
	digest.Write([]byte{quote})
	digest.WriteString(template)
	return digest.Sum64()
}

// Binder substitutes ? placeholders with serialized values.
type Binder struct {
	Serializer Serializer
}

func NewBinder(serializer Serializer) *Binder {
	return &Binder{Serializer: serializer}
}

// Segment is a piece of statement text. A bound segment already holds
// serialized values and is emitted as is; only template segments are
// scanned for placeholders.
type Segment struct {
	Text  string
	Bound bool
}

// Bind scans template completely before substituting anything, so that
// quotes or question marks inside substituted values are never mistaken
// for template syntax. The number of placeholders must equal len(values).
func (binder *Binder) Bind(template string, values []Value) (string, error) {
	return binder.BindSegments([]Segment{{Text: template}}, values)
}

// BindSegments binds values into the template segments in order and joins
// them with the bound segments. The placeholders of all template segments
// together must equal len(values).
func (binder *Binder) BindSegments(segments []Segment, values []Value) (string, error) {
	quote := binder.Serializer.Quoting.String

	scanned := make([]Plan, len(segments))
	placeholders := 0
	size := 0
	for i, segment := range segments {
		if segment.Bound {
			size += len(segment.Text)
			continue
		}
		scanned[i] = cachedScan(segment.Text, quote)
		placeholders += len(scanned[i].Positions)
		size += len(scanned[i].Text)
	}

	if placeholders != len(values) {
		return "", fmt.Errorf("%w: wrong number of values to bind (%d placeholders, %d values)",
			core.ErrBinding, placeholders, len(values))
	}
	if len(segments) == 1 && len(values) == 0 {
		if segments[0].Bound {
			return segments[0].Text, nil
		}
		return scanned[0].Text, nil
	}

	var bound strings.Builder
	bound.Grow(size + 8*len(values))

	next := 0
	for i, segment := range segments {
		if segment.Bound {
			bound.WriteString(segment.Text)
			continue
		}
		plan := scanned[i]
		previous := 0
		for _, position := range plan.Positions {
			value := values[next]
			next++
			literal, err := binder.Serializer.Serialize(value, false, !value.raw)
			if err != nil {
				return "", err
			}
			bound.WriteString(plan.Text[previous:position])
			bound.WriteString(literal)
			previous = position + 1
		}
		bound.WriteString(plan.Text[previous:])
	}

	return bound.String(), nil
}
