package memory

import (
	"fmt"
	"strings"
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

// TokenCounter reports what a text costs against the context budget.
type TokenCounter interface {
	Count(text string) int
}

// WordCounter approximates tokens as whitespace-delimited words. Callers
// needing model-accurate counts should use TiktokenCounter instead.
type WordCounter struct{}

func (WordCounter) Count(text string) int {
	return len(strings.Fields(text))
}

var (
	tk     *tiktoken.Tiktoken
	tkOnce sync.Once
	tkErr  error
)

// TiktokenCounter counts with the cl100k_base encoding.
type TiktokenCounter struct {
	enc *tiktoken.Tiktoken
}

func NewTiktokenCounter() (*TiktokenCounter, error) {
	tkOnce.Do(func() {
		tk, tkErr = tiktoken.GetEncoding("cl100k_base")
	})
	if tkErr != nil {
		return nil, fmt.Errorf("load tiktoken encoding: %w", tkErr)
	}
	return &TiktokenCounter{enc: tk}, nil
}

func (c *TiktokenCounter) Count(text string) int {
	if text == "" {
		return 0
	}
	return len(c.enc.Encode(text, nil, nil))
}

type Budgeter struct {
	counter TokenCounter
}

func NewBudgeter(counter TokenCounter) *Budgeter {
	return &Budgeter{counter: counter}
}

// Select admits ranked items greedily until the ceiling is reached or an
// item drops below the relevance floor. The floor check is an early exit:
// everything after a failing item ranks lower. An item that does not fit
// stops admission outright; later, smaller items are not tried, so the
// budget may stay under-filled.
func (b *Budgeter) Select(ranked []Scored, maxTokens int, floor float64) ([]Scored, int) {
	var selected []Scored
	used := 0

	for _, item := range ranked {
		if item.Score < floor {
			break
		}
		tokens := b.counter.Count(item.Text)
		if used+tokens > maxTokens {
			break
		}
		item.Tokens = tokens
		selected = append(selected, item)
		used += tokens
	}
	return selected, used
}
