package internal

import (
	"context"
	"fmt"
	"hash/fnv"
	"strings"
)

// Completer produces the assistant's reply for one conversational turn.
// The real text-generation transport lives outside this module; the engine
// only consumes replies.
type Completer interface {
	Complete(ctx context.Context, prompt string, history []*Step) (string, error)
}

// CannedCompleter is an offline Completer returning deterministic canned
// market-analytics replies, so the chat loop works without an LLM backend.
type CannedCompleter struct{}

var cannedReplies = []string{
	"Market Growth for your category is trending up 12% this quarter, Boss. Keep stock levels above the 14-day turnaround threshold.",
	"Your Visibility Index sits at 68/100. Closing the keyword gap on the top 5 search terms would recover most of the Lost Revenue Opportunity.",
	"Buyout Rate is holding at 91%, Partner. The main leak is logistics cost; renegotiate the last-mile tier before scaling ad spend.",
	"Competitor stock on the matching SKU dropped 40% this week. A modest price hold now captures their overflow demand.",
	"Unit economics check out: margin 23%, ROI 1.8x. The Neural Database flags packaging cost as your next optimization lever.",
}

// Complete implements Completer by hashing the prompt into the canned set.
func (CannedCompleter) Complete(_ context.Context, prompt string, history []*Step) (string, error) {
	h := fnv.New32a()
	h.Write([]byte(strings.ToLower(strings.TrimSpace(prompt))))
	reply := cannedReplies[int(h.Sum32())%len(cannedReplies)]
	if len(history) > 0 {
		return fmt.Sprintf("Picking up from step %d. %s", history[len(history)-1].StepNumber, reply), nil
	}
	return reply, nil
}
