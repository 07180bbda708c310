package ui

import (
	"fmt"

	"github.com/rivo/tview"

	"github.com/parlaydesk/tracker/internal/metrics"
	"github.com/parlaydesk/tracker/internal/view"
)

var monthHeaders = []string{"Month", "Parlays", "W-L", "Hit", "Profit", "Bank"}

// MonthOverviewView is a table with one row per month of the season.
type MonthOverviewView struct {
	table *tview.Table
}

// NewMonthOverviewView creates a new month overview view.
func NewMonthOverviewView() *MonthOverviewView {
	table := tview.NewTable().
		SetBorders(false).
		SetFixed(1, 0)

	table.SetTitle(" Months ").SetBorder(true)

	v := &MonthOverviewView{table: table}
	v.setHeader()
	return v
}

// Widget returns the tview primitive.
func (v *MonthOverviewView) Widget() tview.Primitive {
	return v.table
}

func (v *MonthOverviewView) setHeader() {
	for col, header := range monthHeaders {
		cell := tview.NewTableCell(header).
			SetTextColor(tview.Styles.SecondaryTextColor).
			SetAlign(tview.AlignLeft).
			SetSelectable(false).
			SetExpansion(1)
		v.table.SetCell(0, col, cell)
	}
}

// Update refreshes the table from the current season.
func (v *MonthOverviewView) Update(snapshot metrics.Snapshot) {
	v.table.Clear()
	v.setHeader()

	months := snapshot.Model.Months
	for i, month := range months {
		t := month.Totals
		cells := []string{
			month.Label,
			fmt.Sprintf("%d", t.Parlays),
			fmt.Sprintf("%d-%d", t.Wins, t.Losses),
			view.Percent(t.HitRate),
			fmt.Sprintf("[%s]%s[-]", moneyColor(t.Profit), view.SignedMoney(t.Profit)),
			view.Money(t.Bank),
		}

		for col, text := range cells {
			cell := tview.NewTableCell(text).
				SetAlign(tview.AlignLeft).
				SetExpansion(1)
			v.table.SetCell(i+1, col, cell)
		}
	}

	v.table.SetTitle(fmt.Sprintf(" Months (%d) ", len(months)))
}
