package ui

import (
	"fmt"
	"strings"

	"github.com/rivo/tview"

	"github.com/parlaydesk/tracker/internal/view"
)

// ParlayDetailView shows the legs of the selected parlay.
type ParlayDetailView struct {
	textView *tview.TextView
}

// NewParlayDetailView creates a new parlay detail view.
func NewParlayDetailView() *ParlayDetailView {
	textView := tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true).
		SetWrap(true)

	textView.SetTitle(" Parlay ").SetBorder(true)

	return &ParlayDetailView{textView: textView}
}

// Widget returns the tview primitive.
func (v *ParlayDetailView) Widget() tview.Primitive {
	return v.textView
}

// Show renders p, or a hint when nothing is selected.
func (v *ParlayDetailView) Show(p view.Parlay, ok bool) {
	v.textView.Clear()
	if !ok {
		v.textView.SetTitle(" Parlay ")
		fmt.Fprint(v.textView, "[gray]Select a parlay in the tree (Enter expands)[-]")
		return
	}

	v.textView.SetTitle(fmt.Sprintf(" Parlay %s ", p.Date))
	fmt.Fprint(v.textView, formatParlay(p))
	v.textView.ScrollToBeginning()
}

func formatParlay(p view.Parlay) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Date: %s   Odds: %s   Result: [%s]%s[-]\n", p.Date, p.Odds, resultColor(p.Result), p.Result)
	fmt.Fprintf(&b, "Stake: %s   Profit: [%s]%s[-]", view.Money(p.Stake), moneyColor(p.Profit), view.SignedMoney(p.Profit))
	if p.Bank != nil {
		fmt.Fprintf(&b, "   Bank: %s", view.Money(*p.Bank))
	}
	b.WriteString("\n\n")

	for i, leg := range p.Legs {
		fmt.Fprintf(&b, "%d. %s\n", i+1, tview.Escape(leg.Match))
		fmt.Fprintf(&b, "   Pick: %s @ %.2f  [%s]%s[-]", tview.Escape(leg.Pick), leg.Odds, resultColor(leg.PickResult), leg.PickResult)
		if leg.MatchResult != "" {
			fmt.Fprintf(&b, "  (%s)", tview.Escape(leg.MatchResult))
		}
		b.WriteString("\n")
	}
	return b.String()
}
